package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexlab/trainerdex-cli/internal/fetcher"
	"github.com/dexlab/trainerdex-cli/internal/model"
	"github.com/dexlab/trainerdex-cli/pkg/bulbapedia"
)

type stubFetcher struct{ requests int64 }

func (s *stubFetcher) Get(context.Context, string) ([]byte, error) { return nil, nil }
func (s *stubFetcher) Requests() int64                             { return s.requests }

// stubClient resolves pages from a fixed map; missing names get ErrNoPage
// and explicit errors win over both.
type stubClient struct {
	pages map[string]string
	errs  map[string]error
}

func (c *stubClient) ResolvePage(_ context.Context, title string) (*bulbapedia.Page, error) {
	if err, ok := c.errs[title]; ok {
		return nil, err
	}
	html, ok := c.pages[title]
	if !ok {
		return nil, bulbapedia.ErrNoPage
	}
	return &bulbapedia.Page{Title: title, HTML: html}, nil
}

const brockArticle = `<div class="mw-parser-output">
<h2>Pokémon</h2>
<h3>Red and Blue</h3>
<table>
<tr><th>Pokémon</th><th>Level</th></tr>
<tr><td>Geodude</td><td>12</td></tr>
</table>
</div>`

const emptyArticle = `<div class="mw-parser-output">
<h2>Biography</h2><p>Nothing battle-related.</p>
</div>`

func writeRoster(t *testing.T, trainers ...string) string {
	t.Helper()
	var list []model.Trainer
	for _, name := range trainers {
		list = append(list, model.Trainer{Name: name})
	}
	index := model.NewRosterIndex()
	index.Add("Red/Blue", model.GameRoster{
		Source:   "https://pokemondb.net/red-blue/gymleaders-elitefour",
		Sections: []model.Section{{Section: "Gyms", Trainers: list}},
	})

	path := filepath.Join(t.TempDir(), "rosters.json")
	require.NoError(t, WriteJSON(index, path))
	return path
}

func readEnriched(t *testing.T, path string) (model.SourceMeta, map[string]json.RawMessage, map[string]model.Failure) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Source   model.SourceMeta           `json:"source"`
		Trainers map[string]json.RawMessage `json:"trainers"`
		Failures map[string]model.Failure   `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc.Source, doc.Trainers, doc.Failures
}

func TestRunBulbapedia_PartitionsTrainersAndFailures(t *testing.T) {
	t.Parallel()

	input := writeRoster(t, "Brock", "Misty", "Whitney")
	output := filepath.Join(t.TempDir(), "enriched.json")

	client := &stubClient{
		// Whitney has no entry, so she resolves to not_found.
		pages: map[string]string{
			"Brock": brockArticle,
			"Misty": emptyArticle,
		},
	}
	f := &stubFetcher{requests: 5}

	generated := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	err := RunBulbapedia(context.Background(), f, client, BulbapediaOptions{
		Input:     input,
		Output:    output,
		API:       bulbapedia.DefaultAPIURL,
		UserAgent: "test/1.0",
		Now:       func() time.Time { return generated },
	})
	require.NoError(t, err)

	source, trainers, failures := readEnriched(t, output)

	assert.Equal(t, bulbapedia.DefaultAPIURL, source.API)
	assert.Equal(t, "test/1.0", source.UserAgent)
	assert.Equal(t, "2026-08-24T12:00:00Z", source.GeneratedAt)
	assert.Equal(t, int64(5), source.Requests)
	assert.Equal(t, input, source.Seed)

	assert.Contains(t, trainers, "Brock")
	assert.NotContains(t, trainers, "Misty")
	assert.NotContains(t, trainers, "Whitney")

	assert.Equal(t, model.FailureNoTables, failures["Misty"].Reason)
	assert.Equal(t, model.FailureNotFound, failures["Whitney"].Reason)
	assert.NotContains(t, failures, "Brock")

	var rec map[string][]model.Team
	require.NoError(t, json.Unmarshal(trainers["Brock"], &rec))
	teams, ok := rec["Pokémon -> Red and Blue"]
	require.True(t, ok)
	require.Len(t, teams, 1)
	assert.Equal(t, "Geodude", teams[0].Rows[0]["Pokémon"])
}

func TestRunBulbapedia_NetworkFailureReason(t *testing.T) {
	t.Parallel()

	input := writeRoster(t, "Brock")
	output := filepath.Join(t.TempDir(), "enriched.json")

	client := &stubClient{errs: map[string]error{
		"Brock": &fetcher.Error{Reason: fetcher.ReasonNetwork, URL: "https://x", Attempts: 3},
	}}

	err := RunBulbapedia(context.Background(), &stubFetcher{}, client, BulbapediaOptions{
		Input:  input,
		Output: output,
	})
	require.NoError(t, err)

	_, trainers, failures := readEnriched(t, output)
	assert.Empty(t, trainers)
	assert.Equal(t, model.FailureNetwork, failures["Brock"].Reason)
}

func TestRunBulbapedia_DeduplicatesAcrossGames(t *testing.T) {
	t.Parallel()

	index := model.NewRosterIndex()
	index.Add("Red/Blue", model.GameRoster{Sections: []model.Section{
		{Section: "Gyms", Trainers: []model.Trainer{{Name: "Brock"}}},
	}})
	index.Add("Yellow", model.GameRoster{Sections: []model.Section{
		{Section: "Gyms", Trainers: []model.Trainer{{Name: "Leader Brock"}, {Name: "Misty"}}},
	}})
	input := filepath.Join(t.TempDir(), "rosters.json")
	require.NoError(t, WriteJSON(index, input))

	output := filepath.Join(t.TempDir(), "enriched.json")
	client := &stubClient{pages: map[string]string{
		"Brock": brockArticle,
		"Misty": brockArticle,
	}}

	err := RunBulbapedia(context.Background(), &stubFetcher{}, client, BulbapediaOptions{
		Input:  input,
		Output: output,
	})
	require.NoError(t, err)

	_, trainers, failures := readEnriched(t, output)
	assert.Empty(t, failures)
	// "Leader Brock" collapses into the first-seen spelling.
	assert.Len(t, trainers, 2)
	assert.Contains(t, trainers, "Brock")
	assert.Contains(t, trainers, "Misty")
}

func TestRunBulbapedia_TrainerFilterAndCap(t *testing.T) {
	t.Parallel()

	input := writeRoster(t, "Brock", "Misty", "Surge")
	client := &stubClient{pages: map[string]string{
		"Brock": brockArticle, "Misty": brockArticle, "Surge": brockArticle,
	}}

	output := filepath.Join(t.TempDir(), "filtered.json")
	err := RunBulbapedia(context.Background(), &stubFetcher{}, client, BulbapediaOptions{
		Input:    input,
		Output:   output,
		Trainers: []string{"misty"},
	})
	require.NoError(t, err)
	_, trainers, _ := readEnriched(t, output)
	assert.Len(t, trainers, 1)
	assert.Contains(t, trainers, "Misty")

	capped := filepath.Join(t.TempDir(), "capped.json")
	err = RunBulbapedia(context.Background(), &stubFetcher{}, client, BulbapediaOptions{
		Input:       input,
		Output:      capped,
		MaxTrainers: 2,
	})
	require.NoError(t, err)
	_, trainers, _ = readEnriched(t, capped)
	assert.Len(t, trainers, 2)
	assert.Contains(t, trainers, "Brock")
	assert.Contains(t, trainers, "Misty")
	assert.NotContains(t, trainers, "Surge")
}

func TestRunBulbapedia_UnknownTrainerAborts(t *testing.T) {
	t.Parallel()

	input := writeRoster(t, "Brock")
	output := filepath.Join(t.TempDir(), "enriched.json")

	err := RunBulbapedia(context.Background(), &stubFetcher{}, &stubClient{}, BulbapediaOptions{
		Input:    input,
		Output:   output,
		Trainers: []string{"Brock", "Giovanni"},
	})

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindUnknownTrainer, ce.Kind)
	assert.Equal(t, []string{"Giovanni"}, ce.Names)
	assert.NoFileExists(t, output)
}
