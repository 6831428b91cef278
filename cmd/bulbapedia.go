package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dexlab/trainerdex-cli/internal/fetcher"
	"github.com/dexlab/trainerdex-cli/internal/pipeline"
	"github.com/dexlab/trainerdex-cli/pkg/bulbapedia"
)

var bulbapediaCmd = &cobra.Command{
	Use:   "bulbapedia",
	Short: "Enrich scraped trainers with Bulbapedia battle tables",
	Long: `Look up every trainer from a PokemonDB scrape on Bulbapedia and
extract their full battle tables, grouped by the heading path each table
appears under. Trainers that cannot be enriched land in a failures ledger
inside the same document.

Examples:
  # Enrich everything from the default stage-one output
  trainerdex bulbapedia

  # Enrich a couple of trainers only
  trainerdex bulbapedia --trainer Brock --trainer "Misty"

  # Dry-run sizing: stop after the first five trainers
  trainerdex bulbapedia --max-trainers 5`,
	RunE: runBulbapedia,
}

func init() {
	f := bulbapediaCmd.Flags()
	f.String("pokemondb-json", "pokemondb_trainers.json", "stage-one input file")
	f.StringArray("trainer", nil, "trainer to enrich, repeatable (default: all)")
	f.Int("max-trainers", 0, "stop after this many trainers (0 = no cap)")
	f.Float64("delay", 1.2, "minimum seconds between requests")
	f.String("user-agent", fetcher.DefaultUserAgent, "User-Agent header")
	f.String("output", "bulbapedia_trainers.json", "output file path")

	rootCmd.AddCommand(bulbapediaCmd)
}

func runBulbapedia(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trainers, _ := cmd.Flags().GetStringArray("trainer")
	maxTrainers, _ := cmd.Flags().GetInt("max-trainers")

	userAgent := flagString(cmd, "user-agent", cfg.Bulbapedia.UserAgent)
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:   userAgent,
		Delay:       flagDelay(cmd, "delay", cfg.Bulbapedia.Delay),
		Timeout:     time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxAttempts: cfg.Fetch.MaxAttempts,
	})
	client := bulbapedia.NewClient(f, bulbapedia.WithAPIURL(cfg.Bulbapedia.APIURL))

	return pipeline.RunBulbapedia(ctx, f, client, pipeline.BulbapediaOptions{
		Input:       flagString(cmd, "pokemondb-json", cfg.Bulbapedia.Input),
		Output:      flagString(cmd, "output", cfg.Bulbapedia.Output),
		Trainers:    trainers,
		MaxTrainers: maxTrainers,
		API:         cfg.Bulbapedia.APIURL,
		UserAgent:   userAgent,
	})
}
