package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"estate-api/cmd"
	"estate-api/internal/data/cache"
	"estate-api/internal/data/repository"
	"estate-api/internal/notification"
	"estate-api/internal/usecase"
	"estate-api/internal/wire"
	"estate-api/pkg/database"
	"estate-api/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("estate-api: %v", err)
	}
}

func run() error {
	config, err := utils.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using zap production logger.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.App.AutoMigrate {
		if err := database.Migrate(ctx, database.DSN(config.Database)); err != nil {
			return err
		}
		logger.Info("Migrations applied")
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Database connected successfully")

	rdb, err := database.InitRedis(config.Redis.URL)
	if err != nil {
		return err
	}
	defer rdb.Close()
	logger.Info("Redis connected successfully")

	store := cache.NewCache(rdb)
	revocations := cache.NewRevocations(store, logger)
	tokens := utils.NewTokenManager(config.JWT.Secret, config.JWT.Expiry())

	deps := usecase.AuthDeps{
		Tokens:   tokens,
		Revoker:  revocations,
		Notifier: notification.NewNotifier(newMailer(config, logger), newSMSSender(config, logger), config.App.FrontendURL, logger),
		Throttle: cache.NewRateLimiter(store, config.Auth.ResendLimit, config.Auth.ResendWindow(), logger),
		Guard:    cache.NewLoginGuard(store, config.Auth.MaxFailedLogins, config.Auth.Lockout(), config.Auth.Lockout(), logger),
	}

	repos := repository.NewRepository(db, logger)
	app := wire.Wiring(repos, config, deps, wire.Security{Tokens: tokens, Revocations: revocations}, logger)

	return cmd.APIServer(ctx, app.Router, config.App.Port, logger)
}

func newMailer(config *utils.Config, logger *zap.Logger) notification.Mailer {
	if config.Email.Host == "" {
		logger.Warn("SMTP_HOST not set, emails are written to the log")
		return notification.NewLogMailer(logger)
	}
	return notification.NewSMTPMailer(config.Email)
}

func newSMSSender(config *utils.Config, logger *zap.Logger) notification.SMSSender {
	if config.SMS.Provider != "twilio" {
		logger.Warn("SMS_PROVIDER is not twilio, text messages are written to the log")
		return notification.NewLogSender(logger)
	}
	return notification.NewTwilioSender(config.SMS, logger)
}
