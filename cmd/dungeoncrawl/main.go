// Package main is the entry point for the DungeonCrawl terminal client.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/samdwyer/dungeoncrawl/internal/config"
	"github.com/samdwyer/dungeoncrawl/internal/game"
	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/registry"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to config file")
	startMap := flag.String("map", "", "Start map id (overrides config)")
	generate := flag.Bool("generate", false, "Start on a generated level")
	seed := flag.Int64("seed", 0, "Seed for generated levels (0 picks one)")
	flag.Parse()

	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}
	switch {
	case *generate:
		cfg.Game.StartMap = ""
	case *startMap != "":
		cfg.Game.StartMap = *startMap
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}

	// tcell owns the terminal, so logs only go to the file
	cfg.Logging.ConsoleEnabled = false
	cfg.Logging.FileEnabled = true
	if err := logger.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	// Initialize telemetry
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Game will run without observability")
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	maps, err := registry.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open map registry: %v", err)
	}
	defer maps.Close()

	transitions, err := gamedata.LoadTransitionTable()
	if err != nil {
		log.Fatalf("Failed to load transitions: %v", err)
	}
	themes, err := gamedata.LoadThemeRegistry()
	if err != nil {
		log.Fatalf("Failed to load themes: %v", err)
	}

	session := game.NewSession(maps, transitions, cfg.Generator, cfg.Game.Seed)

	// Create and run game
	g, err := game.New(cfg.Game, session, themes)
	if err != nil {
		log.Fatalf("Failed to initialize game: %v", err)
	}
	defer g.Close()

	if err := g.Run(ctx); err != nil {
		g.Close()
		log.Fatalf("Game error: %v", err)
	}
}
