package bulbapedia

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGetter serves canned responses keyed by query parameters.
type stubGetter struct {
	parse  map[string]string // title -> raw parse response
	search map[string]string // search term -> raw opensearch response
	calls  []string
}

func (g *stubGetter) Get(_ context.Context, rawURL string) ([]byte, error) {
	g.calls = append(g.calls, rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	switch q.Get("action") {
	case "parse":
		if resp, ok := g.parse[q.Get("page")]; ok {
			return []byte(resp), nil
		}
		return []byte(`{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`), nil
	case "opensearch":
		if resp, ok := g.search[q.Get("search")]; ok {
			return []byte(resp), nil
		}
		return []byte(`["x",[],[],[]]`), nil
	}
	return nil, errors.New("unexpected action")
}

const brockParse = `{"parse":{"title":"Brock","pageid":1234,"revid":99,
"text":"<div class=\"mw-parser-output\"><p>Brock</p></div>",
"displaytitle":"Brock"}}`

func TestResolvePage_Direct(t *testing.T) {
	t.Parallel()

	g := &stubGetter{parse: map[string]string{"Brock": brockParse}}
	client := NewClient(g, WithAPIURL("https://wiki.test/w/api.php"))

	page, err := client.ResolvePage(context.Background(), "Brock")
	require.NoError(t, err)
	assert.Equal(t, "Brock", page.Title)
	assert.Equal(t, int64(1234), page.PageID)
	assert.Equal(t, int64(99), page.RevID)
	assert.Equal(t, "https://wiki.test/wiki/Brock", page.URL)
	assert.Contains(t, page.HTML, "mw-parser-output")
	assert.Len(t, g.calls, 1)
}

func TestResolvePage_SearchFallback(t *testing.T) {
	t.Parallel()

	g := &stubGetter{
		parse: map[string]string{"Iono": `{"parse":{"title":"Iono","pageid":7,"revid":8,"text":"<p>x</p>","displaytitle":"Iono"}}`},
		search: map[string]string{
			"iono": `["iono",["Iono (anime)","Iono"],["",""],["https://a","https://b"]]`,
		},
	}
	client := NewClient(g)

	page, err := client.ResolvePage(context.Background(), "iono")
	require.NoError(t, err)
	assert.Equal(t, "Iono", page.Title)
	// One failed parse, one search, one successful parse.
	assert.Len(t, g.calls, 3)
}

func TestResolvePage_NoPage(t *testing.T) {
	t.Parallel()

	g := &stubGetter{}
	client := NewClient(g)

	_, err := client.ResolvePage(context.Background(), "Nonexistent Trainer")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPage)
}

func TestResolvePage_MediaOnlyCandidatesRejected(t *testing.T) {
	t.Parallel()

	g := &stubGetter{
		search: map[string]string{
			"ash": `["ash",["Ash (anime)","Ash (manga)"],["",""],["https://a","https://b"]]`,
		},
	}
	client := NewClient(g)

	_, err := client.ResolvePage(context.Background(), "ash")
	assert.ErrorIs(t, err, ErrNoPage)
}

func TestResolvePage_TransportErrorPropagates(t *testing.T) {
	t.Parallel()

	client := NewClient(failingGetter{})
	_, err := client.ResolvePage(context.Background(), "Brock")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoPage)
}

type failingGetter struct{}

func (failingGetter) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestScoreTitle(t *testing.T) {
	t.Parallel()

	assert.Greater(t, scoreTitle("Brock"), scoreTitle("Brock (game)"))
	assert.Greater(t, scoreTitle("Brock (game)"), scoreTitle("Brock (disambiguation page)"))
	assert.Greater(t, scoreTitle("Nessa (gym leader)"), 0)
	assert.LessOrEqual(t, scoreTitle("Brock (anime)"), 0)
	assert.LessOrEqual(t, scoreTitle("Misty (TCG)"), 0)
}
