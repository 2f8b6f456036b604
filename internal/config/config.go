// Package config provides client configuration loaded from an optional YAML
// file and environment variables, with the environment winning.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend selects which workflow-server API the client talks to.
type Backend string

const (
	BackendCromwell Backend = "cromwell"
	BackendTemporal Backend = "temporal"
)

// Config holds all client configuration.
type Config struct {
	// Server is the workflow server address: a base URL for the cromwell
	// backend, a host:port for the temporal backend.
	Server string
	// APIVersion is the REST API version for the cromwell backend.
	APIVersion string
	// Token is an optional bearer token for the cromwell backend.
	Token   string
	Backend Backend

	LogLevel  string
	LogFormat string

	// FetchConcurrency bounds the metadata worker pool.
	FetchConcurrency int
}

// fileConfig is the on-disk YAML shape.
type fileConfig struct {
	Server     string `yaml:"server"`
	APIVersion string `yaml:"api_version"`
	Token      string `yaml:"token"`
	Backend    string `yaml:"backend"`
}

// DefaultPath returns the default config file location, ~/.wfreport.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wfreport.yaml")
}

// Load reads configuration from the config file (WFREPORT_CONFIG or the
// default path, silently skipped when absent), then applies environment
// variables on top. A .env file in the working directory is honored.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server:           "http://localhost:8000",
		APIVersion:       "v1",
		Backend:          BackendCromwell,
		LogLevel:         "info",
		LogFormat:        "text",
		FetchConcurrency: 8,
	}

	path := envOr("WFREPORT_CONFIG", DefaultPath())
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.Server = envOr("WFREPORT_SERVER", cfg.Server)
	cfg.APIVersion = envOr("WFREPORT_API_VERSION", cfg.APIVersion)
	cfg.Token = envOr("WFREPORT_TOKEN", cfg.Token)
	cfg.Backend = Backend(envOr("WFREPORT_BACKEND", string(cfg.Backend)))
	cfg.LogLevel = envOr("WFREPORT_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("WFREPORT_LOG_FORMAT", cfg.LogFormat)

	if raw := os.Getenv("WFREPORT_FETCH_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: invalid WFREPORT_FETCH_CONCURRENCY %q (must be a positive integer)", raw)
		}
		cfg.FetchConcurrency = n
	}

	if cfg.Backend != BackendCromwell && cfg.Backend != BackendTemporal {
		return Config{}, fmt.Errorf("config: invalid WFREPORT_BACKEND %q (must be cromwell or temporal)", cfg.Backend)
	}
	if cfg.Server == "" {
		return Config{}, fmt.Errorf("config: WFREPORT_SERVER required")
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.Server != "" {
		cfg.Server = fc.Server
	}
	if fc.APIVersion != "" {
		cfg.APIVersion = fc.APIVersion
	}
	if fc.Token != "" {
		cfg.Token = fc.Token
	}
	if fc.Backend != "" {
		cfg.Backend = Backend(fc.Backend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
