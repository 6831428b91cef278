package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dexlab/trainerdex-cli/internal/fetcher"
	"github.com/dexlab/trainerdex-cli/internal/pipeline"
)

var pokemondbCmd = &cobra.Command{
	Use:   "pokemondb",
	Short: "Scrape trainer rosters from PokemonDB",
	Long: `Scrape gym leader, Elite Four and champion rosters from PokemonDB
game pages into a single JSON document, keyed by game in catalog order.

Examples:
  # Scrape every known game
  trainerdex pokemondb

  # Scrape specific games (name or substring, case-insensitive)
  trainerdex pokemondb --game "Red" --game "Sword"

  # Slow down for a shared connection
  trainerdex pokemondb --delay 3.0`,
	RunE: runPokemonDB,
}

func init() {
	f := pokemondbCmd.Flags()
	f.StringArray("game", nil, "game to scrape, repeatable (default: all)")
	f.String("output", "pokemondb_trainers.json", "output file path")
	f.Float64("delay", 1.5, "minimum seconds between requests")
	f.String("user-agent", fetcher.DefaultUserAgent, "User-Agent header")

	rootCmd.AddCommand(pokemondbCmd)
}

func runPokemonDB(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	games, _ := cmd.Flags().GetStringArray("game")

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:   flagString(cmd, "user-agent", cfg.PokemonDB.UserAgent),
		Delay:       flagDelay(cmd, "delay", cfg.PokemonDB.Delay),
		Timeout:     time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		Referer:     cfg.PokemonDB.BaseURL,
	})

	return pipeline.RunPokemonDB(ctx, f, pipeline.PokemonDBOptions{
		BaseURL: cfg.PokemonDB.BaseURL,
		Games:   games,
		Output:  flagString(cmd, "output", cfg.PokemonDB.Output),
	})
}
