package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dexlab/trainerdex-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "trainerdex",
	Short: "Pokémon trainer roster scraper",
	Long:  "Scrapes gym leader, Elite Four and champion rosters from PokemonDB, then enriches each trainer with full battle tables from Bulbapedia.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// flagString prefers an explicitly set flag over the config value.
func flagString(cmd *cobra.Command, name, fromConfig string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fromConfig
}

// flagDelay resolves the inter-request delay, in seconds, the same way.
func flagDelay(cmd *cobra.Command, name string, fromConfig float64) time.Duration {
	secs := fromConfig
	if cmd.Flags().Changed(name) {
		secs, _ = cmd.Flags().GetFloat64(name)
	}
	return time.Duration(secs * float64(time.Second))
}
