package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"techlearn/catalog"
	"techlearn/certificate"
	"techlearn/config"
	"techlearn/database"
	"techlearn/identity"
	applogger "techlearn/logger"
	"techlearn/middleware"
	"techlearn/routers"
	"techlearn/services"
	"techlearn/session"
	"techlearn/tutor"
	"techlearn/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	log, err := applogger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := database.ConnectDb(cfg, log); err != nil {
		log.Fatal("Failed to connect to storage", "driver", cfg.StorageDriver, "error", err)
	}
	if err := catalog.Init(cfg.CatalogPath); err != nil {
		log.Fatal("Failed to load course catalog", "path", cfg.CatalogPath, "error", err)
	}

	// Accounts live in SQL when a SQL driver is configured
	var accounts identity.AccountRepository = identity.NewKVAccounts(database.Database.KV)
	if database.Database.Db != nil {
		accounts = identity.NewGormAccounts(database.Database.Db)
	}

	sessions := session.NewRegistry(database.Database.KV, catalog.Default, cfg.CertificateGenerationLimit, log)
	services.App = &services.Container{
		Log:      log,
		Catalog:  catalog.Default,
		Sessions: sessions,
		Accounts: identity.NewAccounts(accounts, cfg.SaltRound),
		Exporter: certificate.NewExporter(certificate.NewRenderer(certificate.NewFontRegistry(certificate.BuiltinFonts))),
		Tutor:    tutor.NewClient(cfg.TutorAPIURL, cfg.TutorAPIKey, cfg.TutorModel, log),
		Mailer:   utils.NewMailer(cfg, log),
	}

	scheduler, err := utils.InitializeSessionScheduler(sessions, cfg.SessionSweepSpec, time.Duration(cfg.SessionIdleTTL)*time.Minute, log)
	if err != nil {
		log.Fatal("Failed to start session scheduler", "error", err)
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization," + middleware.DeviceHeader,
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	routers.SetupRoutes(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down...")
		<-scheduler.Stop().Done()
		if err := app.Shutdown(); err != nil {
			log.Error("Failed to shut down server", "error", err)
		}
	}()

	log.Info("Server is running", "port", cfg.Port, "courses", len(catalog.Default.All()))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
