// Package config loads client configuration from a .env file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/nkarpova/pokedeck/pkg/pokedex"
)

// Config holds everything the client needs at startup.
type Config struct {
	// BackendURL is the collection backend base URL.
	BackendURL string
	// PokeAPIURL is the creature directory base URL.
	PokeAPIURL string
	// DataDir holds the session database and the log file.
	DataDir string
}

const defaultBackendURL = "http://localhost:3001"

// Load reads configuration with precedence: environment > .env file > default.
func Load() (*Config, error) {
	// A missing .env is fine; explicit env vars always win anyway.
	godotenv.Load() //nolint:errcheck

	cfg := &Config{
		BackendURL: envOr("POKEDECK_API_URL", defaultBackendURL),
		PokeAPIURL: envOr("POKEDECK_POKEAPI_URL", pokedex.DefaultBaseURL),
	}

	cfg.DataDir = os.Getenv("POKEDECK_DATA_DIR")
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config.Load: get home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".pokedeck")
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("config.Load: create data dir: %w", err)
	}

	return cfg, nil
}

// SessionDBPath is the location of the persisted session database.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.DataDir, "session.db")
}

// LogPath is the location of the client log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "pokedeck.log")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
