package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"outreachsim/models"
	"outreachsim/utils"
)

type CampaignController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCampaignController(db *gorm.DB, logger *log.Logger) *CampaignController {
	return &CampaignController{
		DB:     db,
		Logger: logger,
	}
}

// CreateCampaign creates a new campaign. Newly created campaigns start
// inactive; activation is an explicit step so the engine's
// newest-active-wins selection stays predictable.
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	var input struct {
		Name            string `json:"name" validate:"required,max=255"`
		SubjectTemplate string `json:"subject_template" validate:"required,max=255"`
		BodyTemplate    string `json:"body_template" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var existing models.Campaign
	if err := cc.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Campaign with this name already exists", nil)
	}

	campaign := models.Campaign{
		Name:            input.Name,
		SubjectTemplate: input.SubjectTemplate,
		BodyTemplate:    input.BodyTemplate,
		Active:          false,
	}
	if err := cc.DB.Create(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", err)
	}

	cc.Logger.Printf("campaign %q created (id %d)", campaign.Name, campaign.ID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(campaign))
}

// GetCampaigns lists all campaigns, newest first.
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	var campaigns []models.Campaign
	if err := cc.DB.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}
	return c.JSON(utils.SuccessResponse(campaigns))
}

// ActivateCampaign flags a campaign active and deactivates the rest,
// keeping a single active campaign per cycle.
func (cc *CampaignController) ActivateCampaign(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var campaign models.Campaign
	if err := cc.DB.First(&campaign, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Campaign{}).
			Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Model(&campaign).Update("active", true).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to activate campaign", err)
	}

	cc.Logger.Printf("campaign %q activated", campaign.Name)
	return c.JSON(utils.SuccessResponse(campaign))
}
