package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"artconnect/internal/app"
	"artconnect/internal/config"
	"artconnect/internal/logging"
	"artconnect/internal/mcpserver"
)

func main() {
	envErr := godotenv.Load(".env")

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	// zap writes to stderr; stdout carries the MCP stream.
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if envErr != nil {
		logger.Warn("⚠️ .env file not found", zap.Error(envErr))
	}

	logger.Info("🚀 Starting ArtConnect MCP Server")

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init app", zap.Error(err))
	}
	defer func() { _ = a.Close() }()
	if err := a.LoadSamples(); err != nil {
		logger.Fatal("failed to load samples", zap.Error(err))
	}

	server := mcpserver.New(a.Review, a.Replies, logger).NewMCPServer("1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		logger.Error("❌ Server failed", zap.Error(err))
	}
}
