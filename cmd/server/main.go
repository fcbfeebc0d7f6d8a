package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"loyalwallet/internal/adapters/http/middleware"
	"loyalwallet/internal/adapters/http/routes"
	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/adapters/wallet"
	"loyalwallet/internal/config"
	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/core/services"
	"loyalwallet/internal/pkg/serial"

	"github.com/gofiber/fiber/v2"

	_ "loyalwallet/docs" // Swagger docs
)

// @title LoyalWallet API
// @version 1.0
// @description Loyalty stamp cards delivered to phone wallets: stamping, presents, reports and company management.

// @contact.name API Support
// @contact.email support@loyalwallet.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1
// @schemes https http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	if cfg.IsDev() {
		if err := config.NewSeeder(db, cfg.Seed).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed development data: %v", err)
		}
	}

	// Wallet provider and card delivery
	serials, err := serial.NewGenerator(cfg.SerialNodeID)
	if err != nil {
		log.Fatalf("❌ Failed to create serial generator: %v", err)
	}
	walletClient := wallet.NewClient(wallet.Config{
		BaseURL:   cfg.Wallet.BaseURL,
		APIID:     cfg.Wallet.APIID,
		APIKey:    cfg.Wallet.APIKey,
		SMSSender: cfg.Wallet.SMSSender,
		Timeout:   cfg.Wallet.Timeout,
	})
	dispatcher := services.NewOutboxDispatcher(
		repositories.NewOutboxRepository(db),
		walletClient,
		cfg.Outbox,
		cfg.Wallet.Timeout,
	)
	dispatcher.Start()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LoyalWallet API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		UnescapePath: true,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	svc := routes.Setup(app, db, cfg, routes.Deps{
		Wallet:    walletClient,
		Pins:      walletClient,
		Presenter: cards.NewPresenter(cfg.Wallet.CardLinkBase),
		Serials:   serials,
		Notifier:  dispatcher,
	})

	// Outbox retries and cleanup jobs
	cronService := services.NewCronService(dispatcher, svc.Activation, svc.Auth, cfg.Outbox.Schedule)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron service: %v", err)
	}

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("❌ Server error: %v", err)
	}

	cronService.Stop()
	dispatcher.Stop()
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
