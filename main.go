package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nexora/nexora/pkg/config"
	"github.com/nexora/nexora/pkg/utils"
)

// main starts the Nexora backend: the HTTP API, the agent and the
// nightly archive job. It runs until SIGINT or SIGTERM.
func main() {
	utils.InitLogger()
	logger := utils.GetLogger()

	if path, err := config.EnsureDefaultConfig(); err != nil {
		logger.Warn("Failed to write default config", "error", err)
	} else {
		logger.Debug("Config file", "path", path)
	}

	cfg, configFile, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "file", configFile, "error", err)
		os.Exit(1)
	}

	server, err := NewServer(cfg)
	if err != nil {
		logger.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Shutting down")
}
