// Package bulbapedia wraps the Bulbapedia MediaWiki API for fetching
// rendered trainer pages, with a search fallback when the direct title
// does not resolve.
package bulbapedia

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultAPIURL is the production MediaWiki API endpoint.
const DefaultAPIURL = "https://bulbapedia.bulbagarden.net/w/api.php"

// ErrNoPage means no article could be resolved for a trainer name, either
// directly or through search.
var ErrNoPage = eris.New("bulbapedia: no page found")

// Getter is the transport the client issues requests through. Satisfied by
// the fetcher so rate limiting and retries apply to API calls too.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client resolves trainer names to rendered wiki pages.
type Client interface {
	// ResolvePage fetches the parsed page for title. When the title has no
	// article, search is consulted for the best candidate. Returns
	// ErrNoPage when neither route yields one.
	ResolvePage(ctx context.Context, title string) (*Page, error)
}

// Page is a rendered wiki article.
type Page struct {
	Title        string
	DisplayTitle string
	PageID       int64
	RevID        int64
	URL          string
	HTML         string
}

// ClientOption configures the Bulbapedia client.
type ClientOption func(*apiClient)

// WithAPIURL points the client at a different api.php endpoint.
func WithAPIURL(apiURL string) ClientOption {
	return func(c *apiClient) {
		if apiURL != "" {
			c.apiURL = apiURL
		}
	}
}

// WithSearchLimit overrides how many search candidates are considered when
// the direct title misses.
func WithSearchLimit(n int) ClientOption {
	return func(c *apiClient) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

type apiClient struct {
	getter      Getter
	apiURL      string
	searchLimit int
}

// NewClient creates a client issuing requests through getter.
func NewClient(getter Getter, opts ...ClientOption) Client {
	c := &apiClient{
		getter:      getter,
		apiURL:      DefaultAPIURL,
		searchLimit: 6,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *apiClient) ResolvePage(ctx context.Context, title string) (*Page, error) {
	page, missing, err := c.fetchParse(ctx, title)
	if err != nil {
		return nil, err
	}
	if !missing {
		return page, nil
	}

	candidate, err := c.searchTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if candidate == "" {
		return nil, eris.Wrapf(ErrNoPage, "title %q", title)
	}
	page, missing, err = c.fetchParse(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, eris.Wrapf(ErrNoPage, "title %q (search candidate %q)", title, candidate)
	}
	return page, nil
}

type parseResponse struct {
	Error *apiError     `json:"error"`
	Parse *parsePayload `json:"parse"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type parsePayload struct {
	Title        string `json:"title"`
	PageID       int64  `json:"pageid"`
	RevID        int64  `json:"revid"`
	Text         string `json:"text"`
	DisplayTitle string `json:"displaytitle"`
}

// fetchParse runs action=parse for title. missing is true when the wiki
// reports the page does not exist, which is an expected outcome rather
// than an error.
func (c *apiClient) fetchParse(ctx context.Context, title string) (page *Page, missing bool, err error) {
	body, err := c.getter.Get(ctx, c.parseURL(title))
	if err != nil {
		return nil, false, eris.Wrapf(err, "bulbapedia: parse %q", title)
	}
	var resp parseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, eris.Wrapf(err, "bulbapedia: decode parse response for %q", title)
	}
	if resp.Error != nil {
		if resp.Error.Code == "missingtitle" || resp.Error.Code == "pagecannotexist" {
			return nil, true, nil
		}
		return nil, false, eris.Errorf("bulbapedia: api error %s: %s", resp.Error.Code, resp.Error.Info)
	}
	if resp.Parse == nil {
		return nil, false, eris.Errorf("bulbapedia: parse response for %q has no payload", title)
	}
	return &Page{
		Title:        resp.Parse.Title,
		DisplayTitle: resp.Parse.DisplayTitle,
		PageID:       resp.Parse.PageID,
		RevID:        resp.Parse.RevID,
		URL:          c.pageURL(resp.Parse.Title),
		HTML:         resp.Parse.Text,
	}, false, nil
}

func (c *apiClient) parseURL(title string) string {
	q := url.Values{}
	q.Set("action", "parse")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("redirects", "1")
	q.Set("prop", "text|displaytitle|revid")
	q.Set("page", title)
	return c.apiURL + "?" + q.Encode()
}

// pageURL derives the canonical article URL from the API endpoint.
func (c *apiClient) pageURL(title string) string {
	base := strings.TrimSuffix(c.apiURL, "/w/api.php")
	return base + "/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// searchTitle asks opensearch for candidates and returns the best scored
// one, or "" when nothing acceptable comes back.
func (c *apiClient) searchTitle(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("action", "opensearch")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("limit", strconv.Itoa(c.searchLimit))
	q.Set("search", query)
	body, err := c.getter.Get(ctx, c.apiURL+"?"+q.Encode())
	if err != nil {
		return "", eris.Wrapf(err, "bulbapedia: search %q", query)
	}

	// Opensearch replies with a positional array:
	// [query, [titles...], [descriptions...], [urls...]].
	var sections []json.RawMessage
	if err := json.Unmarshal(body, &sections); err != nil {
		return "", eris.Wrapf(err, "bulbapedia: decode search response for %q", query)
	}
	if len(sections) < 2 {
		return "", nil
	}
	var titles []string
	if err := json.Unmarshal(sections[1], &titles); err != nil {
		return "", eris.Wrapf(err, "bulbapedia: decode search titles for %q", query)
	}

	best := ""
	bestScore := 0
	for _, title := range titles {
		score := scoreTitle(title)
		if score <= 0 {
			continue
		}
		if best == "" || score > bestScore {
			best = title
			bestScore = score
		}
	}
	return best, nil
}

// preferredKeywords mark disambiguations pointing at the game character;
// disallowedKeywords mark spin-off media pages that share the name.
var (
	preferredKeywords = []string{
		"(game)", "(trainer)", "(core series)",
		"gym leader", "trial captain", "elite four", "champion",
	}
	disallowedKeywords = []string{
		"(anime)", "(manga)", "(adventures)", "(tcg)",
		"(song)", "(chapter)", "(episode)",
	}
)

// scoreTitle ranks a search candidate. Bare titles beat disambiguated
// ones; game-flavored disambiguations are acceptable, media pages never.
func scoreTitle(title string) int {
	lowered := strings.ToLower(title)
	score := 1
	if !strings.Contains(lowered, "(") {
		score += 100
	}
	for _, kw := range preferredKeywords {
		if strings.Contains(lowered, kw) {
			score += 60
			break
		}
	}
	for _, kw := range disallowedKeywords {
		if strings.Contains(lowered, kw) {
			score -= 200
			break
		}
	}
	return score
}
