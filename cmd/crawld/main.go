// Package main runs the DungeonCrawl play server.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/samdwyer/dungeoncrawl/internal/config"
	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/registry"
	"github.com/samdwyer/dungeoncrawl/internal/server"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := logger.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warning("telemetry setup failed, running without traces", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("telemetry shutdown failed", "error", err)
			}
		}()
	}

	maps, err := registry.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("failed to open map registry", "error", err)
		os.Exit(1)
	}
	defer maps.Close()

	transitions, err := gamedata.LoadTransitionTable()
	if err != nil {
		logger.Error("failed to load transitions", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg.Server, maps, transitions, cfg.Generator)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("play server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("play server stopped")
}
