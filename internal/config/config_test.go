package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("POKEDECK_DATA_DIR", dir)
	t.Setenv("POKEDECK_API_URL", "")
	t.Setenv("POKEDECK_POKEAPI_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001", cfg.BackendURL)
	assert.Equal(t, "https://pokeapi.co/api/v2", cfg.PokeAPIURL)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "session.db"), cfg.SessionDBPath())
	assert.Equal(t, filepath.Join(dir, "pokedeck.log"), cfg.LogPath())
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("POKEDECK_DATA_DIR", filepath.Join(dir, "nested", "data"))
	t.Setenv("POKEDECK_API_URL", "https://deck.example.com")
	t.Setenv("POKEDECK_POKEAPI_URL", "https://mirror.example.com/v2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://deck.example.com", cfg.BackendURL)
	assert.Equal(t, "https://mirror.example.com/v2", cfg.PokeAPIURL)
	assert.DirExists(t, cfg.DataDir, "data dir is created on load")
}
