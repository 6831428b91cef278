package fetcher

import (
	"context"
	"io"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies the tool and how to reach its operators.
// Both sites rate-limit aggressively and expect scrapers to say who they
// are; override it with something personal for anything beyond development.
const DefaultUserAgent = "trainerdex/1.0 (trainer roster research; +https://github.com/dexlab/trainerdex-cli)"

const maxBackoff = 30 * time.Second

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string

	// Delay is the minimum spacing between consecutive requests, measured
	// from the start of the previous one. Zero disables the limit.
	Delay time.Duration

	Timeout     time.Duration
	MaxAttempts int

	// RetryWait is the base backoff after a transient failure; it doubles
	// per attempt up to maxBackoff.
	RetryWait time.Duration

	// Referer is sent alongside every request when set.
	Referer string
}

// HTTPFetcher implements Fetcher using net/http with a minimum
// inter-request delay and bounded exponential backoff on transient
// failures.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	limiter  *rate.Limiter
	requests atomic.Int64
}

// NewHTTPFetcher creates a fetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryWait == 0 {
		opts.RetryWait = time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: limiter,
	}
}

// Requests returns the number of HTTP requests issued, retries included.
func (f *HTTPFetcher) Requests() int64 {
	return f.requests.Load()
}

// Get fetches url. Transient failures (timeouts, connection resets, 429,
// 5xx) are retried with exponential backoff up to MaxAttempts; any other
// 4xx fails immediately with ReasonNotFound. The inter-request delay is
// honored before every attempt, retries included.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var (
		lastStatus int
		lastErr    error
	)
	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: wait for request slot")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: create request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)
		if f.opts.Referer != "" {
			req.Header.Set("Referer", f.opts.Referer)
		}

		f.requests.Add(1)
		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			lastStatus = 0
			zap.L().Warn("request failed",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				lastErr = readErr
				lastStatus = resp.StatusCode
				f.backoff(ctx, attempt)
				continue
			}
			return data, nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = eris.Errorf("status %d", resp.StatusCode)
			lastStatus = resp.StatusCode
			zap.L().Warn("transient status, retrying",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
			)
			f.backoff(ctx, attempt)
			continue

		default:
			// Definitive client error: the page does not exist for us.
			return nil, &Error{Reason: ReasonNotFound, URL: rawURL, Attempts: attempt, Status: resp.StatusCode}
		}
	}
	return nil, &Error{
		Reason:   ReasonNetwork,
		URL:      rawURL,
		Attempts: f.opts.MaxAttempts,
		Status:   lastStatus,
		Err:      lastErr,
	}
}

// backoff sleeps between retry attempts. The rate limiter still applies on
// top, so the minimum delay survives a retry burst. No sleep after the
// final attempt.
func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	if attempt >= f.opts.MaxAttempts {
		return
	}
	d := time.Duration(float64(f.opts.RetryWait) * math.Pow(2, float64(attempt-1)))
	if d > maxBackoff {
		d = maxBackoff
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
