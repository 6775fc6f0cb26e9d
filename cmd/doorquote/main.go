package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"doorquote/internal/catalog"
	"doorquote/internal/config"
	"doorquote/internal/notify"
	"doorquote/internal/pricing"
	"doorquote/internal/server"
	"doorquote/internal/session"
	"doorquote/internal/storage"
	"doorquote/internal/submit"
	"doorquote/internal/wizard"
	"doorquote/pkg/crm"
	"doorquote/pkg/logger"
	"doorquote/pkg/redis"
)

func main() {
	zapLogger, err := logger.New()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SessionTTL)
	defer redisClient.Close()

	pgStorage, err := storage.NewPostgresStorage(ctx, *cfg, redisClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
	}
	defer pgStorage.Close()

	if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	sessions := session.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer sessions.Close()

	crmClient := crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.APIKey, zapLogger)

	registry := catalog.Default()
	reducer := wizard.NewReducer(registry)
	rates := pricing.DefaultRates()

	opts := submit.Options{
		Leads:    crmClient,
		Quotes:   pgStorage,
		Registry: registry,
		Rates:    rates,
		Logger:   zapLogger,
	}
	if emailer := notify.NewEmailNotifier(cfg.SMTP, zapLogger); emailer != nil {
		opts.Customer = emailer
	}
	telegram, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChannelID, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create telegram notifier", zap.Error(err))
	}
	if telegram != nil {
		opts.Internal = telegram
	}
	submitter := submit.New(opts)

	srv := server.New(
		cfg.HTTP,
		registry,
		reducer,
		rates,
		sessions,
		submitter,
		pgStorage,
		pgStorage,
		zapLogger,
	)

	if err := srv.Run(ctx); err != nil {
		zapLogger.Fatal("Server stopped with error", zap.Error(err))
	}

	zapLogger.Info("Server shutdown gracefully")
}
