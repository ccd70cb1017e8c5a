package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samdwyer/dungeoncrawl/internal/world"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Game.StartMap != "loop" {
		t.Errorf("expected start map loop, got %q", cfg.Game.StartMap)
	}
	if cfg.Store.Driver != "json" {
		t.Errorf("expected json store, got %q", cfg.Store.Driver)
	}
	if cfg.Generator != world.DefaultOptions() {
		t.Errorf("generator options = %+v", cfg.Generator)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should be off by default")
	}
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if cfg == nil || cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default config for missing file, got %+v", cfg)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
logging:
  level: DEBUG
store:
  driver: sqlite
  path: maps.db
  connect_timeout: 3s
generator:
  width: 24
  stairs_count: 2
  start_corner: center
game:
  start_map: cross
  seed: 99
server:
  addr: ":9000"
  allowed_origins:
    - "https://crawl.example"
telemetry:
  enabled: true
  endpoint: "http://localhost:4318"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "maps.db" || cfg.Store.ConnectTimeout != 3*time.Second {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Generator.Width != 24 || cfg.Generator.StairsCount != 2 || cfg.Generator.StartCorner != world.CornerCenter {
		t.Errorf("generator = %+v", cfg.Generator)
	}
	// Unset fields keep their defaults.
	if cfg.Generator.Height != world.DefaultOptions().Height {
		t.Errorf("generator height = %d, want default", cfg.Generator.Height)
	}
	if cfg.Game.StartMap != "cross" || cfg.Game.Seed != 99 || cfg.Game.Theme != "classic" {
		t.Errorf("game = %+v", cfg.Game)
	}
	if cfg.Server.Addr != ":9000" || len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "http://localhost:4318" {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("game: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
	if cfg == nil || cfg.Game.StartMap != "loop" {
		t.Error("expected defaults alongside the parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CRAWL_LOG_LEVEL", "WARN")
	t.Setenv("CRAWL_LOG_FILE", "/tmp/crawl.log")
	t.Setenv("DATABASE_URL", "postgres://crawl@localhost/crawl")
	t.Setenv("CRAWL_START_MAP", "")
	t.Setenv("CRAWL_SEED", "1234")
	t.Setenv("CRAWL_THEME", "crypt")
	t.Setenv("CRAWL_ADDR", ":7000")
	t.Setenv("HONEYCOMB_API_KEY", "key")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Logging.Level != "WARN" || !cfg.Logging.FileEnabled || cfg.Logging.FilePath != "/tmp/crawl.log" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.DSN != "postgres://crawl@localhost/crawl" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Game.StartMap != "" {
		t.Errorf("empty CRAWL_START_MAP should select a generated start, got %q", cfg.Game.StartMap)
	}
	if cfg.Game.Seed != 1234 || cfg.Game.Theme != "crypt" {
		t.Errorf("game = %+v", cfg.Game)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != honeycombEndpoint {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
	if cfg.Telemetry.Headers["x-honeycomb-team"] != "key" || cfg.Telemetry.Headers["x-honeycomb-dataset"] != "dungeoncrawl" {
		t.Errorf("telemetry headers = %v", cfg.Telemetry.Headers)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CRAWL_SEED", "many"},
		{"CRAWL_TELEMETRY", "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if err := DefaultConfig().ApplyEnv(); err == nil {
				t.Errorf("ApplyEnv() accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestApplyEnvTelemetryOverride(t *testing.T) {
	t.Setenv("HONEYCOMB_API_KEY", "key")
	t.Setenv("CRAWL_TELEMETRY", "false")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Telemetry.Enabled {
		t.Error("CRAWL_TELEMETRY=false should win over the API key")
	}
}
