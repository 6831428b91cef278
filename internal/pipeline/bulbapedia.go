package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dexlab/trainerdex-cli/internal/fetcher"
	"github.com/dexlab/trainerdex-cli/internal/model"
	"github.com/dexlab/trainerdex-cli/internal/names"
	"github.com/dexlab/trainerdex-cli/internal/wikiparse"
	"github.com/dexlab/trainerdex-cli/pkg/bulbapedia"
)

// BulbapediaOptions configures a stage-two run.
type BulbapediaOptions struct {
	Input  string
	Output string

	// Trainers restricts the run to matching roster names. Empty means
	// every trainer in the input.
	Trainers []string

	// MaxTrainers caps how many trainers are processed; zero means no cap.
	MaxTrainers int

	API       string
	UserAgent string

	// Now supplies the generated_at timestamp; defaults to time.Now.
	Now func() time.Time
}

// RunBulbapedia enriches every trainer from the stage-one document with
// roster tables from their Bulbapedia article. Each trainer lands either in
// the trainers mapping or in the failures ledger; a failed trainer never
// stops the run. Unknown trainer selectors abort before the first request.
func RunBulbapedia(ctx context.Context, f fetcher.Fetcher, client bulbapedia.Client, opts BulbapediaOptions) error {
	index, err := ReadRosterIndex(opts.Input)
	if err != nil {
		return err
	}

	roster := distinctTrainers(index)
	selected, err := selectTrainers(roster, opts.Trainers)
	if err != nil {
		return err
	}
	if opts.MaxTrainers > 0 && len(selected) > opts.MaxTrainers {
		selected = selected[:opts.MaxTrainers]
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	doc := model.NewEnrichedIndex()
	for i, name := range selected {
		zap.L().Info("enriching trainer",
			zap.String("trainer", name),
			zap.Int("n", i+1),
			zap.Int("total", len(selected)),
		)

		rec, failure := enrichTrainer(ctx, client, name)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if failure != nil {
			zap.L().Warn("trainer not enriched",
				zap.String("trainer", name),
				zap.String("reason", failure.Reason),
				zap.String("message", failure.Message),
			)
			doc.AddFailure(name, *failure)
			continue
		}
		doc.AddTrainer(name, rec)
	}

	doc.Source = model.SourceMeta{
		API:         opts.API,
		UserAgent:   opts.UserAgent,
		GeneratedAt: now().UTC().Format(time.RFC3339),
		Requests:    f.Requests(),
		Seed:        opts.Input,
	}

	if err := WriteJSON(doc, opts.Output); err != nil {
		return err
	}
	zap.L().Info("enrichment complete",
		zap.Int("trainers", len(selected)),
		zap.Int("enriched", len(doc.Trainers())),
		zap.Int("failed", len(doc.Failures())),
		zap.Int64("requests", f.Requests()),
		zap.String("output", opts.Output),
	)
	return nil
}

// enrichTrainer resolves one trainer's article and extracts its roster
// tables. Returns a ledger entry instead of an error so callers can keep
// going; only context cancellation propagates.
func enrichTrainer(ctx context.Context, client bulbapedia.Client, name string) (*model.TrainerRecord, *model.Failure) {
	page, err := client.ResolvePage(ctx, names.Query(name))
	if err != nil {
		return nil, classifyFailure(err)
	}

	entries, err := wikiparse.Extract(page.HTML)
	if err != nil {
		return nil, &model.Failure{Reason: model.FailureParse, Message: err.Error()}
	}
	if len(entries) == 0 {
		return nil, &model.Failure{
			Reason:  model.FailureNoTables,
			Message: fmt.Sprintf("no roster tables on %q", page.Title),
		}
	}

	rec := model.NewTrainerRecord()
	for _, e := range entries {
		rec.Add(wikiparse.JoinPath(e.Path), e.Team)
	}
	return rec, nil
}

func classifyFailure(err error) *model.Failure {
	reason := model.FailureParse
	switch {
	case errors.Is(err, bulbapedia.ErrNoPage) || fetcher.IsNotFound(err):
		reason = model.FailureNotFound
	case fetcher.IsNetwork(err):
		reason = model.FailureNetwork
	}
	return &model.Failure{Reason: reason, Message: err.Error()}
}

// distinctTrainers collapses roster names that normalize to the same key,
// keeping the first raw spelling in discovery order as the representative.
func distinctTrainers(index *model.RosterIndex) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, name := range index.TrainerNames() {
		key := names.Key(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// selectTrainers filters roster to the requested names, matched by
// normalized key. Requests matching nothing are a config error.
func selectTrainers(roster []string, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return roster, nil
	}
	byKey := make(map[string]string, len(roster))
	for _, name := range roster {
		byKey[names.Key(name)] = name
	}

	var (
		selected []string
		unknown  []string
		picked   = make(map[string]struct{})
	)
	for _, req := range requested {
		key := names.Key(req)
		name, ok := byKey[key]
		if !ok {
			unknown = append(unknown, req)
			continue
		}
		if _, dup := picked[name]; dup {
			continue
		}
		picked[name] = struct{}{}
		selected = append(selected, name)
	}
	if len(unknown) > 0 {
		return nil, &ConfigError{Kind: KindUnknownTrainer, Names: unknown}
	}
	return selected, nil
}
