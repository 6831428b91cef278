// Package config loads application configuration from an optional YAML
// file and TRAINERDEX_ environment variables, and wires the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dexlab/trainerdex-cli/internal/fetcher"
	"github.com/dexlab/trainerdex-cli/pkg/bulbapedia"
)

// Config holds the full application configuration.
type Config struct {
	PokemonDB  PokemonDBConfig  `yaml:"pokemondb" mapstructure:"pokemondb"`
	Bulbapedia BulbapediaConfig `yaml:"bulbapedia" mapstructure:"bulbapedia"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// PokemonDBConfig configures the stage-one PokemonDB scrape.
type PokemonDBConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Delay     float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	Output    string  `yaml:"output" mapstructure:"output"`
	UserAgent string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// BulbapediaConfig configures the stage-two Bulbapedia enrichment.
type BulbapediaConfig struct {
	APIURL    string  `yaml:"api_url" mapstructure:"api_url"`
	Delay     float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	Input     string  `yaml:"input" mapstructure:"input"`
	Output    string  `yaml:"output" mapstructure:"output"`
	UserAgent string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds HTTP behavior shared by both stages.
type FetchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads config.yaml from the working directory (optional) and applies
// TRAINERDEX_ environment overrides on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRAINERDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("pokemondb.base_url", "https://pokemondb.net")
	v.SetDefault("pokemondb.delay_secs", 1.5)
	v.SetDefault("pokemondb.output", "pokemondb_trainers.json")
	v.SetDefault("pokemondb.user_agent", fetcher.DefaultUserAgent)
	v.SetDefault("bulbapedia.api_url", bulbapedia.DefaultAPIURL)
	v.SetDefault("bulbapedia.delay_secs", 1.2)
	v.SetDefault("bulbapedia.input", "pokemondb_trainers.json")
	v.SetDefault("bulbapedia.output", "bulbapedia_trainers.json")
	v.SetDefault("bulbapedia.user_agent", fetcher.DefaultUserAgent)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger builds the global zap logger from the log config.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
