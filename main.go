package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"outreachsim/config"
	controller "outreachsim/controllers"
	"outreachsim/engine"
	"outreachsim/middleware"
	"outreachsim/routes"
	"outreachsim/store"
	"outreachsim/worker"
)

func main() {
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	app := fiber.New()
	app.Use(middleware.CORS())

	st := store.NewGormStore(config.DB)
	hub := controller.NewCycleHub(log.New(os.Stdout, "CYCLE-WS: ", log.LstdFlags))

	// The sending cycle engine and its periodic trigger.
	cycle := engine.NewCycle(
		st,
		engine.Config{
			Warmup: engine.WarmupCalculator{
				StartVolume: config.AppConfig.Warmup.StartVolume,
				MaxVolume:   config.AppConfig.Warmup.MaxVolume,
				RampDays:    config.AppConfig.Warmup.RampDays,
			},
			TicksPerDay:        config.AppConfig.TicksPerDay,
			UnsubscribeBaseURL: config.AppConfig.UnsubscribeBaseURL,
		},
		rand.New(rand.NewSource(time.Now().UnixNano())),
		log.New(os.Stdout, "CYCLE: ", log.Ldate|log.Ltime|log.Lshortfile),
	)

	workerLog := logrus.New()
	workerLog.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cycleWorker := worker.NewCycleWorker(
		cycle,
		time.Duration(config.AppConfig.CycleIntervalSeconds)*time.Second,
		workerLog,
		hub,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go cycleWorker.Start(ctx)

	routes.SetupRoutes(app, config.DB, st, hub)

	go func() {
		<-ctx.Done()
		logger.Println("Shutting down...")
		_ = app.Shutdown()
	}()

	logger.Printf("Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
