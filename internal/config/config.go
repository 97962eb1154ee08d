// Package config holds configuration for the kitlend CLI and the
// development backend.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session store kinds.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// StoreConfig selects where the bearer credential is persisted.
type StoreConfig struct {
	Kind string `yaml:"kind"` // file, sqlite, memory
	Path string `yaml:"path"` // file or database path; empty uses the default under ~/.kitlend
}

// ClientConfig holds configuration for the kitlend CLI.
type ClientConfig struct {
	Server    string        `yaml:"server"`     // Backend base URL
	Timeout   time.Duration `yaml:"timeout"`    // Per-request timeout
	Store     StoreConfig   `yaml:"store"`      // Credential store
	LogLevel  string        `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string        `yaml:"log_format"` // text, json
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Server:    "http://localhost:8080",
		Timeout:   15 * time.Second,
		Store:     StoreConfig{Kind: StoreFile},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Dir returns the kitlend state directory (~/.kitlend).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".kitlend"), nil
}

// DefaultPath returns the default config file path (~/.kitlend/config.yaml).
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load builds a ClientConfig from, in increasing priority: defaults, a .env
// file in the working directory, the YAML file at path, and KITLEND_*
// environment variables. An empty path uses DefaultPath. A missing file is
// not an error.
func Load(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *ClientConfig) applyEnv() error {
	if v := os.Getenv("KITLEND_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("KITLEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("KITLEND_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("KITLEND_STORE"); v != "" {
		c.Store.Kind = v
	}
	if v := os.Getenv("KITLEND_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("KITLEND_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("KITLEND_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c ClientConfig) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return errors.New("config: server URL is required")
	}
	switch c.Store.Kind {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("config: unknown store kind %q (want file, sqlite or memory)", c.Store.Kind)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: negative timeout %s", c.Timeout)
	}
	return nil
}

// Login response shapes the development backend can emit.
const (
	LoginFormatText     = "text"
	LoginFormatJSON     = "json"
	LoginFormatEnvelope = "envelope"
)

// DevServerConfig holds configuration for the development backend.
type DevServerConfig struct {
	Addr         string        // Listen address (default ":8080")
	FixturesPath string        // YAML fixtures; empty uses the built-in demo data
	JWTSecret    string        // HS256 signing secret
	TokenTTL     time.Duration // Issued token lifetime
	LoginFormat  string        // text, json, envelope
	BcryptCost   int           // Cost for hashing fixture passwords
	LogLevel     string        // debug, info, warn, error
	LogFormat    string        // text, json
}

// DefaultDevServerConfig returns sensible defaults, with KITLEND_DEV_*
// environment overrides applied.
func DefaultDevServerConfig() DevServerConfig {
	cfg := DevServerConfig{
		Addr:        ":8080",
		JWTSecret:   "kitlend-dev-secret",
		TokenTTL:    24 * time.Hour,
		LoginFormat: LoginFormatEnvelope,
		BcryptCost:  10,
		LogLevel:    "info",
		LogFormat:   "text",
	}
	if v := os.Getenv("KITLEND_DEV_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("KITLEND_DEV_FIXTURES"); v != "" {
		cfg.FixturesPath = v
	}
	if v := os.Getenv("KITLEND_DEV_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("KITLEND_DEV_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenTTL = d
		}
	}
	if v := os.Getenv("KITLEND_DEV_LOGIN_FORMAT"); v != "" {
		cfg.LoginFormat = v
	}
	return cfg
}
