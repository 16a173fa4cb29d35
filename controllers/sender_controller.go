package controller

import (
	"log"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"outreachsim/models"
	"outreachsim/utils"
)

type SenderController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSenderController(db *gorm.DB, logger *log.Logger) *SenderController {
	return &SenderController{
		DB:     db,
		Logger: logger,
	}
}

// CreateSender registers a new sending identity.
func (sc *SenderController) CreateSender(c *fiber.Ctx) error {
	var input struct {
		Email           string  `json:"email" validate:"required,email"`
		Provider        string  `json:"provider" validate:"omitempty,max=50"`
		WarmupEnabled   *bool   `json:"warmup_enabled"`
		ReputationScore float64 `json:"reputation_score" validate:"gte=0,lte=1"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := checkmail.ValidateFormat(email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sender email", err)
	}

	var existing models.SenderAccount
	if err := sc.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Sender with this email already exists", nil)
	}

	sender := models.SenderAccount{
		Email:           email,
		Provider:        input.Provider,
		Active:          true,
		WarmupEnabled:   true,
		ReputationScore: input.ReputationScore,
	}
	if sender.Provider == "" {
		sender.Provider = "generic"
	}
	if input.WarmupEnabled != nil {
		sender.WarmupEnabled = *input.WarmupEnabled
	}

	if err := sc.DB.Create(&sender).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create sender", err)
	}

	sc.Logger.Printf("sender %s registered", sender.Email)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(sender))
}

// GetSenders lists all sender accounts.
func (sc *SenderController) GetSenders(c *fiber.Ctx) error {
	var senders []models.SenderAccount
	if err := sc.DB.Order("id ASC").Find(&senders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch senders", err)
	}
	return c.JSON(utils.SuccessResponse(senders))
}
