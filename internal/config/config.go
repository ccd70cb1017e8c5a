// Package config loads application configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/dungeoncrawl/internal/game"
	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/registry"
	"github.com/samdwyer/dungeoncrawl/internal/server"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

// honeycombEndpoint is used when only a Honeycomb API key is configured.
const honeycombEndpoint = "https://api.honeycomb.io/v1/traces"

// Config holds all application settings.
type Config struct {
	Logging   logger.Config        `yaml:"logging"`
	Store     registry.StoreConfig `yaml:"store"`
	Generator world.Options        `yaml:"generator"`
	Game      game.Config          `yaml:"game"`
	Server    server.Config        `yaml:"server"`
	Telemetry telemetry.Config     `yaml:"telemetry"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Logging:   logger.DefaultConfig(),
		Store:     registry.DefaultStoreConfig(),
		Generator: world.DefaultOptions(),
		Game:      game.DefaultConfig(),
		Server:    server.DefaultConfig(),
	}
}

// Load reads configuration from a YAML file over the defaults.
// If the file doesn't exist, returns default config.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}

	return config, nil
}

// ApplyEnv overrides settings from the environment:
//
//	CRAWL_LOG_LEVEL, CRAWL_LOG_FILE     logging level and file path
//	CRAWL_STORE_DRIVER, CRAWL_STORE_PATH map store
//	DATABASE_URL                        postgres DSN (selects the postgres driver)
//	CRAWL_START_MAP, CRAWL_SEED, CRAWL_THEME
//	CRAWL_ADDR                          play server listen address
//	HONEYCOMB_API_KEY, HONEYCOMB_DATASET trace export to Honeycomb
//	CRAWL_TELEMETRY                     force tracing on or off
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CRAWL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CRAWL_LOG_FILE"); v != "" {
		c.Logging.FileEnabled = true
		c.Logging.FilePath = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Store.Driver = "postgres"
		c.Store.DSN = v
	}
	if v := os.Getenv("CRAWL_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("CRAWL_STORE_PATH"); v != "" {
		c.Store.Path = v
	}

	if v, ok := os.LookupEnv("CRAWL_START_MAP"); ok {
		c.Game.StartMap = v
	}
	if v := os.Getenv("CRAWL_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CRAWL_SEED: %w", err)
		}
		c.Game.Seed = seed
	}
	if v := os.Getenv("CRAWL_THEME"); v != "" {
		c.Game.Theme = v
	}

	if v := os.Getenv("CRAWL_ADDR"); v != "" {
		c.Server.Addr = v
	}

	if key := os.Getenv("HONEYCOMB_API_KEY"); key != "" {
		dataset := os.Getenv("HONEYCOMB_DATASET")
		if dataset == "" {
			dataset = "dungeoncrawl"
		}
		if c.Telemetry.Headers == nil {
			c.Telemetry.Headers = make(map[string]string)
		}
		c.Telemetry.Headers["x-honeycomb-team"] = key
		c.Telemetry.Headers["x-honeycomb-dataset"] = dataset
		if c.Telemetry.Endpoint == "" {
			c.Telemetry.Endpoint = honeycombEndpoint
		}
		c.Telemetry.Enabled = true
	}
	if v := os.Getenv("CRAWL_TELEMETRY"); v != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CRAWL_TELEMETRY: %w", err)
		}
		c.Telemetry.Enabled = enabled
	}

	return nil
}
