// Package main generates dungeon maps offline.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/samdwyer/dungeoncrawl/internal/config"
	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/registry"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to config file")
	seed := flag.Int64("seed", 0, "Generator seed (0 uses the clock)")
	width := flag.Int("width", 0, "Map width (0 uses config)")
	height := flag.Int("height", 0, "Map height (0 uses config)")
	name := flag.String("name", "", "Map name (empty keeps the generated name)")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	ascii := flag.Bool("ascii", false, "Print an ASCII dump instead of JSON")
	save := flag.Bool("save", false, "Save the map into the configured store")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in environment: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	opts := cfg.Generator
	if *width > 0 {
		opts.Width = *width
	}
	if *height > 0 {
		opts.Height = *height
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	ctx := context.Background()
	m, err := world.Generate(ctx, opts, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating map: %v\n", err)
		os.Exit(1)
	}
	if *name != "" {
		m.Name = *name
	}

	var output []byte
	if *ascii {
		output = []byte(fmt.Sprintf("%s (seed %d, %s)\n%s", m.ID, *seed, m.Metadata.Difficulty, m.Format()))
	} else {
		output, err = json.MarshalIndent(m, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding map: %v\n", err)
			os.Exit(1)
		}
		output = append(output, '\n')
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		os.Stdout.Write(output)
	}

	if *save {
		maps, err := registry.Open(ctx, cfg.Store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer maps.Close()
		if err := maps.Put(ctx, m); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving map: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Saved %s to the %s store\n", m.ID, cfg.Store.Driver)
	}
}
