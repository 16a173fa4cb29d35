package models

import (
	"time"

	"gorm.io/gorm"
)

// Engagement event types. Closed set; anything else is a bug.
const (
	EventDelivered    = "delivered"
	EventOpened       = "opened"
	EventReplied      = "replied"
	EventBounced      = "bounced"
	EventUnsubscribed = "unsubscribed"
)

// EmailSend is one simulated message. Created by the sending cycle and
// never updated afterwards except for the single InboxPlacement
// transition nil -> true/false.
type EmailSend struct {
	gorm.Model

	SenderID    uint `gorm:"not null;index" json:"sender_id"`
	RecipientID uint `gorm:"not null;index" json:"recipient_id"`
	CampaignID  uint `gorm:"index" json:"campaign_id"`

	MessageID string `gorm:"not null;uniqueIndex" json:"message_id"`
	Subject   string `json:"subject"`
	Body      string `gorm:"type:text" json:"body"`

	PersonalizationScore float64 `gorm:"default:0" json:"personalization_score"`
	SpamScore            float64 `gorm:"default:0" json:"spam_score"`

	// InboxPlacement is tri-state: nil until the deliverability trial
	// has run, then exactly one of true/false forever.
	InboxPlacement *bool      `json:"inbox_placement"`
	SentAt         *time.Time `json:"sent_at"`
}

// EngagementEvent is an append-only record of simulated recipient
// behavior, keyed to a send and a recipient by ID.
type EngagementEvent struct {
	gorm.Model

	SendID      uint `gorm:"not null;index" json:"send_id"`
	RecipientID uint `gorm:"not null;index" json:"recipient_id"`

	Type    string  `gorm:"not null;index" json:"type"`
	Details *string `gorm:"type:text" json:"details"`
}
