package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/dexlab/trainerdex-cli/internal/catalog"
	"github.com/dexlab/trainerdex-cli/internal/fetcher"
	"github.com/dexlab/trainerdex-cli/internal/model"
	"github.com/dexlab/trainerdex-cli/internal/pokedb"
)

// PokemonDBOptions configures a stage-one run.
type PokemonDBOptions struct {
	BaseURL string

	// Games restricts the run to matching catalog entries. Empty means the
	// whole catalog.
	Games []string

	Output string
}

// RunPokemonDB scrapes trainer pages for the selected games and writes the
// roster document. A game that fails to fetch or parse is logged and
// skipped; the document carries whatever succeeded. Unknown game selectors
// abort before the first request.
func RunPokemonDB(ctx context.Context, f fetcher.Fetcher, opts PokemonDBOptions) error {
	selected, unknown := catalog.Select(opts.Games)
	if len(unknown) > 0 {
		return &ConfigError{Kind: KindUnknownGame, Names: unknown}
	}

	index := model.NewRosterIndex()
	failed := 0
	for i, game := range selected {
		pageURL := game.PageURL(opts.BaseURL)
		zap.L().Info("fetching game page",
			zap.String("game", game.Name),
			zap.String("url", pageURL),
			zap.Int("n", i+1),
			zap.Int("total", len(selected)),
		)

		page, err := f.Get(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			zap.L().Warn("skipping game",
				zap.String("game", game.Name),
				zap.Error(err),
			)
			continue
		}

		sections, err := pokedb.ParseGamePage(page)
		if err != nil {
			failed++
			zap.L().Warn("skipping game",
				zap.String("game", game.Name),
				zap.Error(err),
			)
			continue
		}
		index.Add(game.Name, model.GameRoster{Source: pageURL, Sections: sections})
	}

	if err := WriteJSON(index, opts.Output); err != nil {
		return err
	}
	zap.L().Info("roster scrape complete",
		zap.Int("games", len(selected)),
		zap.Int("succeeded", index.Len()),
		zap.Int("failed", failed),
		zap.Int64("requests", f.Requests()),
		zap.String("output", opts.Output),
	)
	return nil
}
