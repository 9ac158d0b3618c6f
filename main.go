package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"tour-booking/cmd"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/gateway"
	"tour-booking/internal/queue"
	"tour-booking/internal/usecase"
	"tour-booking/internal/wire"
	"tour-booking/pkg/cache"
	"tour-booking/pkg/database"
	"tour-booking/pkg/imagestore"
	"tour-booking/pkg/mailer"
	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Redis is an accelerator, not a dependency; run without it if down
	tourCache, err := cache.New(config.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache", zap.Error(err))
		tourCache = nil
	}
	defer tourCache.Close()

	images, err := imagestore.New(config.Upload, logger)
	if err != nil {
		logger.Fatal("Failed to init image store", zap.Error(err))
	}

	repos := repository.NewRepository(db, logger)
	smtpMailer := mailer.New(config.Email, logger)
	publisher := queue.NewPublisher(config.AMQP.URL, logger)

	app := wire.Wiring(usecase.Deps{
		Repo:      repos,
		Config:    config,
		Cache:     tourCache,
		Mailer:    smtpMailer,
		Publisher: publisher,
		Stripe:    gateway.NewStripeGateway(config.Stripe, config.App.ClientURL, logger),
		MoMo:      gateway.NewMoMoGateway(config.MoMo, logger),
		Images:    images,
	}, logger)

	// Background workers
	consumer := queue.NewConsumer(config.AMQP.URL, smtpMailer, logger)
	go consumer.Start(ctx)
	go app.Service.Payment.StartExpirySweeper(ctx)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
