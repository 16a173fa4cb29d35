package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"outreachsim/models"
	"outreachsim/store"
	"outreachsim/utils"
)

type DashboardController struct {
	Store  store.Store
	Logger *log.Logger
}

func NewDashboardController(st store.Store, logger *log.Logger) *DashboardController {
	return &DashboardController{
		Store:  st,
		Logger: logger,
	}
}

type DashboardStats struct {
	Campaigns    int64 `json:"campaigns"`
	Senders      int64 `json:"senders"`
	Recipients   int64 `json:"recipients"`
	Sends        int64 `json:"sends"`
	Opens        int64 `json:"opens"`
	Replies      int64 `json:"replies"`
	Bounces      int64 `json:"bounces"`
	Unsubscribes int64 `json:"unsubscribes"`

	// InboxSuccessPct is null until at least one send has a decided
	// placement.
	InboxSuccessPct *float64 `json:"inbox_success_pct"`
}

// GetDashboardStats returns the aggregate counters for the dashboard
// cards.
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	ctx := c.Context()

	var stats DashboardStats
	var err error

	if stats.Campaigns, err = dc.Store.CountCampaigns(ctx); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count campaigns", err)
	}
	if stats.Senders, err = dc.Store.CountSenders(ctx); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count senders", err)
	}
	if stats.Recipients, err = dc.Store.CountRecipients(ctx); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count recipients", err)
	}
	if stats.Sends, err = dc.Store.CountSends(ctx); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count sends", err)
	}

	counts := map[string]*int64{
		models.EventOpened:       &stats.Opens,
		models.EventReplied:      &stats.Replies,
		models.EventBounced:      &stats.Bounces,
		models.EventUnsubscribed: &stats.Unsubscribes,
	}
	for eventType, dst := range counts {
		if *dst, err = dc.Store.CountEventsByType(ctx, eventType); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count events", err)
		}
	}

	known, success, err := dc.Store.PlacementCounts(ctx)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count placements", err)
	}
	stats.InboxSuccessPct = InboxSuccessPct(known, success)

	return c.JSON(utils.SuccessResponse(stats))
}

// GetEngagementTrend returns event counts by type over the trailing
// window (default 14 days).
func (dc *DashboardController) GetEngagementTrend(c *fiber.Ctx) error {
	days := c.QueryInt("days", 14)
	if days < 1 || days > 365 {
		days = 14
	}

	trend, err := dc.Store.EventTrend(c.Context(), days)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute trend", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"days":   days,
		"counts": trend,
	}))
}

// InboxSuccessPct computes the inbox placement percentage, rounded to
// two decimals. Nil when no placements are known yet.
func InboxSuccessPct(known, success int64) *float64 {
	if known == 0 {
		return nil
	}
	pct := float64(success) / float64(known) * 100
	pct = float64(int64(pct*100+0.5)) / 100
	return &pct
}
