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

type RecipientController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewRecipientController(db *gorm.DB, logger *log.Logger) *RecipientController {
	return &RecipientController{
		DB:     db,
		Logger: logger,
	}
}

// Unsubscribe flips a recipient's opt-out flag. This is the public
// endpoint the compliance footer links to; the flag only ever moves
// false -> true.
func (rc *RecipientController) Unsubscribe(c *fiber.Ctx) error {
	rid := utils.ParseUint(c.Query("rid"))
	if rid == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing or invalid rid parameter", nil)
	}

	var recipient models.Recipient
	if err := rc.DB.First(&recipient, rid).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Recipient not found", nil)
	}

	if !recipient.Unsubscribed {
		if err := rc.DB.Model(&recipient).Update("unsubscribed", true).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to unsubscribe", err)
		}
		rc.Logger.Printf("recipient %d unsubscribed", recipient.ID)
	}

	return c.JSON(fiber.Map{
		"status":    "unsubscribed",
		"recipient": recipient.Email,
	})
}

type recipientInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"omitempty,max=255"`
	Role     string `json:"role" validate:"omitempty,max=255"`
	Company  string `json:"company" validate:"omitempty,max=255"`
	Industry string `json:"industry" validate:"omitempty,max=255"`
}

// ImportRecipients creates recipients in bulk. Entries failing
// validation or duplicating an existing address are skipped and
// reported, not fatal.
func (rc *RecipientController) ImportRecipients(c *fiber.Ctx) error {
	var input struct {
		Recipients []recipientInput `json:"recipients" validate:"required,min=1,max=5000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	imported := 0
	skipped := make([]string, 0)

	for _, entry := range input.Recipients {
		email := strings.ToLower(strings.TrimSpace(entry.Email))
		if err := checkmail.ValidateFormat(email); err != nil {
			skipped = append(skipped, email)
			continue
		}

		var existing models.Recipient
		if err := rc.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			skipped = append(skipped, email)
			continue
		}

		recipient := models.Recipient{
			Email:    email,
			Name:     entry.Name,
			Role:     entry.Role,
			Company:  entry.Company,
			Industry: entry.Industry,
		}
		if err := rc.DB.Create(&recipient).Error; err != nil {
			rc.Logger.Printf("importing %s: %v", email, err)
			skipped = append(skipped, email)
			continue
		}
		imported++
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"imported": imported,
		"skipped":  skipped,
	}))
}

// GetRecipients returns a paginated recipient listing.
func (rc *RecipientController) GetRecipients(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := rc.DB.Model(&models.Recipient{}).Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count recipients", err)
	}

	var recipients []models.Recipient
	if err := rc.DB.Order("id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipients).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch recipients", err)
	}

	return c.JSON(utils.SuccessResponse(utils.PaginatedResponse{
		Data:  recipients,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}
