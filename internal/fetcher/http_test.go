package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "https://example.org", r.Header.Get("Referer"))
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{
		UserAgent: "test-agent/1.0",
		Referer:   "https://example.org",
		RetryWait: time.Millisecond,
	})
	body, err := f.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, int64(1), f.Requests())
}

func TestGet_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	delay := 40 * time.Millisecond
	f := NewHTTPFetcher(HTTPOptions{Delay: delay, RetryWait: time.Millisecond})

	start := time.Now()
	body, err := f.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int64(3), f.Requests())
	// The minimum delay applies before each retry attempt too.
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestGet_NotFoundFailsImmediately(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{RetryWait: time.Millisecond})
	_, err := f.Get(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNetwork(err))
	assert.Equal(t, int64(1), calls.Load())

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.Status)
}

func TestGet_ExhaustedRetriesIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxAttempts: 2, RetryWait: time.Millisecond})
	_, err := f.Get(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, int64(2), f.Requests())

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusTooManyRequests, fe.Status)
	assert.Equal(t, 2, fe.Attempts)
}

func TestGet_HonorsMinimumDelay(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	delay := 50 * time.Millisecond
	f := NewHTTPFetcher(HTTPOptions{Delay: delay, RetryWait: time.Millisecond})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	// The first request goes through immediately; the next two each wait.
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestGet_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher(HTTPOptions{Delay: time.Hour})
	_, err := f.Get(ctx, srv.URL)
	assert.Error(t, err)
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	e := &Error{Reason: ReasonNetwork, URL: "https://x", Attempts: 3, Status: 503}
	assert.Contains(t, e.Error(), "network")
	assert.Contains(t, e.Error(), "3 attempt")
	assert.Contains(t, e.Error(), "503")
}
