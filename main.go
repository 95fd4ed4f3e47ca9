package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"query-chat/backend"
	"query-chat/config"
	"query-chat/terminal"
	"query-chat/web"
	"query-chat/widget"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	client := backend.New(cfg, logger)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cfg.UIMode {
	case config.UIModeTerminal:
		term := terminal.New(client, os.Stdin, os.Stdout, terminal.Options{
			Options:    widget.Options{CopyFeedbackDelay: cfg.CopyFeedbackDelay},
			Color:      os.Getenv("NO_COLOR") == "",
			PreferDark: cfg.PreferDarkMode,
		}, logger)
		if err := term.Run(ctx); err != nil {
			logger.Error("Terminal session error", zap.Error(err))
			os.Exit(1)
		}
	default:
		webServer, err := web.NewServer(client, logger, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize web server", zap.Error(err))
		}

		port := fmt.Sprintf(":%d", cfg.WebPort)
		logger.Info("Starting query chat web server",
			zap.String("port", port),
			zap.String("backend_url", cfg.BackendURL))
		if err := webServer.Start(ctx, port); err != nil {
			logger.Error("Web server error", zap.Error(err))
			os.Exit(1)
		}
	}
}
