package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexlab/trainerdex-cli/pkg/bulbapedia"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pokemondb.net", cfg.PokemonDB.BaseURL)
	assert.Equal(t, 1.5, cfg.PokemonDB.Delay)
	assert.Equal(t, "pokemondb_trainers.json", cfg.PokemonDB.Output)

	assert.Equal(t, bulbapedia.DefaultAPIURL, cfg.Bulbapedia.APIURL)
	assert.Equal(t, 1.2, cfg.Bulbapedia.Delay)
	assert.Equal(t, "pokemondb_trainers.json", cfg.Bulbapedia.Input)
	assert.Equal(t, "bulbapedia_trainers.json", cfg.Bulbapedia.Output)

	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRAINERDEX_POKEMONDB_DELAY_SECS", "3.5")
	t.Setenv("TRAINERDEX_FETCH_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3.5, cfg.PokemonDB.Delay)
	assert.Equal(t, 5, cfg.Fetch.MaxAttempts)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "shout", Format: "json"}))
}
