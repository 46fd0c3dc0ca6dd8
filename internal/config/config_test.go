package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/busline/pkg/client"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.APIURL != client.DefaultBaseURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, client.DefaultBaseURL)
	}
	if cfg.Store != StoreFile {
		t.Errorf("Store = %q, want %q", cfg.Store, StoreFile)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Timeout())
	}
	if cfg.Booking.RefetchAfterBooking {
		t.Error("expected refetch_after_booking to default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("BUSLINE_API_URL", "")
	t.Setenv("BUSLINE_STATE_DIR", "")
	t.Setenv("BUSLINE_STORE", "")
	t.Setenv("BUSLINE_LOG_LEVEL", "")

	path := writeConfig(t, `
api_url: https://buses.example.com/api
store: sqlite
http:
  timeout: 5s
log:
  level: debug
  format: json
booking:
  refetch_after_booking: true
search:
  page_size: 20
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "https://buses.example.com/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", cfg.Timeout())
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Booking.RefetchAfterBooking {
		t.Error("expected refetch_after_booking = true")
	}
	if cfg.Search.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20", cfg.Search.PageSize)
	}
	// Unset keys keep their defaults.
	if cfg.StateDir == "" {
		t.Error("expected default state_dir to survive")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "api_url: https://file.example.com/api\n")
	t.Setenv("BUSLINE_API_URL", "https://env.example.com/api")
	t.Setenv("BUSLINE_STATE_DIR", "/tmp/busline-state")
	t.Setenv("BUSLINE_STORE", "MEMORY")
	t.Setenv("BUSLINE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "https://env.example.com/api" {
		t.Errorf("APIURL = %q, want env value", cfg.APIURL)
	}
	if cfg.StateDir != "/tmp/busline-state" {
		t.Errorf("StateDir = %q", cfg.StateDir)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Store = %q, want memory", cfg.Store)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BUSLINE_STORE", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL == "" {
		t.Error("expected defaults when no config file exists")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad store", func(c *Config) { c.Store = "redis" }, "invalid store"},
		{"bad timeout", func(c *Config) { c.HTTP.Timeout = "soon" }, "invalid http.timeout"},
		{"bad page size", func(c *Config) { c.Search.PageSize = 7 }, "invalid search.page_size"},
		{"no api url", func(c *Config) { c.APIURL = "" }, "api_url is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
