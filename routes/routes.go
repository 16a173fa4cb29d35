package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "outreachsim/controllers"
	"outreachsim/middleware"
	"outreachsim/store"
)

// SetupRoutes wires all HTTP endpoints: the public unsubscribe
// endpoint, the read-only dashboard API, campaign/sender/recipient
// management and the live cycle feed.
func SetupRoutes(app *fiber.App, db *gorm.DB, st store.Store, hub *controller.CycleHub) {
	dashboardController := controller.NewDashboardController(st, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))
	recipientController := controller.NewRecipientController(db, log.New(os.Stdout, "RECIPIENT: ", log.LstdFlags))
	campaignController := controller.NewCampaignController(db, log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags))
	senderController := controller.NewSenderController(db, log.New(os.Stdout, "SENDER: ", log.LstdFlags))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public opt-out endpoint linked from every compliance footer.
	app.Get("/unsubscribe", middleware.PublicRateLimiter(), recipientController.Unsubscribe)

	api := app.Group("/api/v1", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetDashboardStats)
	dashboard.Get("/trend", dashboardController.GetEngagementTrend)

	campaign := api.Group("/campaigns")
	campaign.Post("/", campaignController.CreateCampaign)
	campaign.Get("/", campaignController.GetCampaigns)
	campaign.Post("/:id/activate", campaignController.ActivateCampaign)

	sender := api.Group("/senders")
	sender.Post("/", senderController.CreateSender)
	sender.Get("/", senderController.GetSenders)

	recipient := api.Group("/recipients")
	recipient.Post("/import", middleware.PublicRateLimiter(), recipientController.ImportRecipients)
	recipient.Get("/", recipientController.GetRecipients)

	// Live per-cycle results.
	api.Get("/cycles/progress", websocket.New(hub.HandleCycleProgressWS))

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})

	log.Println("Routes initialized successfully")
}
