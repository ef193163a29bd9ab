package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"artconnect/internal/app"
	"artconnect/internal/auth"
	"artconnect/internal/config"
	"artconnect/internal/llm"
	"artconnect/internal/logging"
	"artconnect/internal/pending"
	"artconnect/internal/scheduler"
	"artconnect/internal/telegram"
)

func main() {
	envErr := godotenv.Load(".env")

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if envErr != nil {
		logger.Warn("⚠️ .env file not found", zap.Error(envErr))
	}

	if cfg.TelegramBotToken == "" {
		logger.Fatal("❌ TELEGRAM_BOT_TOKEN is required")
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init app", zap.Error(err))
	}
	defer func() { _ = a.Close() }()
	if err := a.LoadSamples(); err != nil {
		logger.Fatal("failed to load samples", zap.Error(err))
	}

	allowRepo, err := auth.NewFileRepository(cfg.AllowlistFilePath)
	if err != nil {
		logger.Fatal("failed to init allowlist repo", zap.Error(err))
	}
	authSvc, err := auth.NewWithRepo(allowRepo, cfg.AllowedUsers, cfg.AdminUserID)
	if err != nil {
		logger.Fatal("failed to init auth", zap.Error(err))
	}

	drafts, err := pending.NewFileRepository(cfg.PendingFilePath)
	if err != nil {
		logger.Fatal("failed to init pending repo", zap.Error(err))
	}

	narrator, err := llm.FromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create llm client", zap.Error(err))
	}
	if narrator == nil {
		logger.Info("ℹ️ LLM_PROVIDER not set, reports are sent without narration")
	}

	bot, err := telegram.New(cfg.TelegramBotToken, telegram.Options{
		Review:    a.Review,
		Auth:      authSvc,
		Drafts:    drafts,
		Narrator:  narrator,
		Logger:    logger,
		HighValue: a.HighValue(),
	})
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(cfg.ReportCron, logger)
	sched.SetReportFunction(bot.SendDailyReport)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	bot.Start(ctx)
}
