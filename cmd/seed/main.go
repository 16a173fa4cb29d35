package main

import (
	"fmt"
	"log"
	"os"

	"outreachsim/config"
	"outreachsim/models"
)

// Seeds the database with demo data: two sender accounts, 500
// prospects and one active campaign. Safe to run repeatedly; existing
// data is left alone.
func main() {
	logger := log.New(os.Stdout, "SEED: ", log.LstdFlags)

	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	db := config.DB

	var senderCount int64
	db.Model(&models.SenderAccount{}).Count(&senderCount)
	if senderCount == 0 {
		senders := []models.SenderAccount{
			{Email: "alice.sender@example.com", Provider: "gmail", Active: true, WarmupEnabled: true, ReputationScore: 0.6},
			{Email: "bob.sender@example.com", Provider: "outlook", Active: true, WarmupEnabled: true, ReputationScore: 0.55},
		}
		if err := db.Create(&senders).Error; err != nil {
			logger.Fatalf("Failed to seed senders: %v", err)
		}
		logger.Println("Seeded sender accounts")
	}

	var recipientCount int64
	db.Model(&models.Recipient{}).Count(&recipientCount)
	if recipientCount == 0 {
		recipients := make([]models.Recipient, 0, 500)
		for i := 1; i <= 500; i++ {
			role := "Marketing Lead"
			if i%3 == 0 {
				role = "Operations Manager"
			}
			industry := "E-commerce"
			if i%2 == 0 {
				industry = "SaaS"
			}
			recipients = append(recipients, models.Recipient{
				Email:    fmt.Sprintf("prospect%d@example.org", i),
				Name:     fmt.Sprintf("Prospect %d", i),
				Role:     role,
				Company:  fmt.Sprintf("Company %d", i),
				Industry: industry,
			})
		}
		if err := db.CreateInBatches(&recipients, 100).Error; err != nil {
			logger.Fatalf("Failed to seed recipients: %v", err)
		}
		logger.Println("Seeded recipients")
	}

	var campaignCount int64
	db.Model(&models.Campaign{}).Count(&campaignCount)
	if campaignCount == 0 {
		campaign := models.Campaign{
			Name:            "Intro Sequence",
			SubjectTemplate: "{{greeting}} {{name}}, quick idea for {{company}}",
			BodyTemplate: "{{greeting}} {{name}},\n\n" +
				"I help {{industry}} teams like {{company}}'s {{role}} hit goals faster by reducing manual outreach.\n" +
				"Would it be crazy to share a 3-line idea tailored to {{company}}?\n\n" +
				"Best,\nAlex",
			Active: true,
		}
		if err := db.Create(&campaign).Error; err != nil {
			logger.Fatalf("Failed to seed campaign: %v", err)
		}
		logger.Println("Seeded campaign")
	}

	logger.Println("Seed complete")
}
