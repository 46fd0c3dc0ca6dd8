// Package config loads the busline client configuration.
//
// Values are resolved in order: built-in defaults, the YAML file
// (~/.busline/config.yaml unless another path is given), then BUSLINE_*
// environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config is the client configuration.
type Config struct {
	// APIURL is the root of the remote REST API.
	APIURL string `yaml:"api_url"`

	// StateDir holds the session store and the TUI log file.
	StateDir string `yaml:"state_dir"`

	// Store selects the session backend: file, sqlite or memory.
	Store string `yaml:"store"`

	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Tickets TicketsConfig `yaml:"tickets"`
	Booking BookingConfig `yaml:"booking"`
	Search  SearchConfig  `yaml:"search"`
}

// HTTPConfig configures the API client transport.
type HTTPConfig struct {
	// Timeout is a Go duration string. Default: 30s
	Timeout string `yaml:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TicketsConfig configures PDF ticket downloads.
type TicketsConfig struct {
	// Dir is where ticket_<id>.pdf files are written.
	Dir string `yaml:"dir"`

	// Open launches the system viewer after a download.
	Open bool `yaml:"open"`
}

// BookingConfig configures the booking view.
type BookingConfig struct {
	// RefetchAfterBooking reloads the trip after a successful booking
	// instead of only marking the seats booked locally.
	RefetchAfterBooking bool `yaml:"refetch_after_booking"`
}

// SearchConfig configures the search view.
type SearchConfig struct {
	PageSize int `yaml:"page_size"`
}

// DefaultStateDir returns ~/.busline.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".busline"
	}
	return filepath.Join(home, ".busline")
}

// DefaultPath returns the config file path used when none is given.
func DefaultPath() string {
	return filepath.Join(DefaultStateDir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	stateDir := DefaultStateDir()
	ticketsDir := "."
	if home, err := os.UserHomeDir(); err == nil {
		ticketsDir = filepath.Join(home, "Downloads")
	}
	return &Config{
		APIURL:   client.DefaultBaseURL,
		StateDir: stateDir,
		Store:    StoreFile,
		HTTP:     HTTPConfig{Timeout: client.DefaultTimeout.String()},
		Log:      LogConfig{Level: "info", Format: "text"},
		Tickets:  TicketsConfig{Dir: ticketsDir},
		Search:   SearchConfig{PageSize: domain.PageSizes[0]},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// An empty path means DefaultPath; a missing default file is not an error,
// a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("BUSLINE_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := getenv("BUSLINE_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := getenv("BUSLINE_STORE"); v != "" {
		c.Store = strings.ToLower(v)
	}
	if v := getenv("BUSLINE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Timeout returns the parsed HTTP timeout.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil || d <= 0 {
		return client.DefaultTimeout
	}
	return d
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.APIURL == "" {
		errs = append(errs, errors.New("api_url is required"))
	}
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("invalid store: %q", c.Store))
	}
	if c.Store != StoreMemory && c.StateDir == "" {
		errs = append(errs, errors.New("state_dir is required"))
	}
	if c.HTTP.Timeout != "" {
		if _, err := time.ParseDuration(c.HTTP.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("invalid http.timeout: %w", err))
		}
	}
	if c.Search.PageSize != 0 && !slices.Contains(domain.PageSizes, c.Search.PageSize) {
		errs = append(errs, fmt.Errorf("invalid search.page_size %d: want one of %v", c.Search.PageSize, domain.PageSizes))
	}

	return errors.Join(errs...)
}
