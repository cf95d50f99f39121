// main.go
package main

import (
	"log"

	"local-services/cmd"
	"local-services/internal/data/repository"
	"local-services/internal/notify"
	"local-services/internal/realtime"
	"local-services/internal/wire"
	"local-services/pkg/database"
	"local-services/pkg/mailer"
	"local-services/pkg/payment"
	"local-services/pkg/queue"
	"local-services/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Realtime hub for booking status broadcasts
	hub := realtime.NewHub(logger)

	// Outbound mail, payment gateway, signature verifier
	sender := mailer.New(config.Email, logger)
	gateway := payment.NewClient(config.Razorpay.KeyID, config.Razorpay.KeySecret, logger)
	verifier := payment.NewVerifier(config.Razorpay.KeySecret)

	// Background notification pipeline
	dispatcher := notify.NewDispatcher(
		queue.Config{MaxAttempts: config.Queue.MaxAttempts},
		sender,
		hub,
		logger,
	)
	defer dispatcher.Close()

	// Wire all dependencies
	app := wire.Wiring(repos, dispatcher, gateway, verifier, hub, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
