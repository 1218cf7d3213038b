package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/internal/httpclient"
	"github.com/teranos/footprint/policy"
)

type countingThrottle struct{ calls int32 }

func (c *countingThrottle) Wait(context.Context, string) (time.Duration, error) {
	atomic.AddInt32(&c.calls, 1)
	return 0, nil
}

func disallowAll(context.Context, string) (string, error) {
	return "User-agent: *\nDisallow: /", nil
}

func failingTransport(t *testing.T) Transport {
	return func(context.Context, string, map[string]string, time.Duration) (*Response, error) {
		t.Fatal("transport must not be called")
		return nil, nil
	}
}

func TestFetcher_RobotsDisallowSkipsBeforeThrottle(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	throttle := &countingThrottle{}
	f := New(Options{
		UserAgent: "UA",
		Robots:    policy.NewRobotsPolicy(disallowAll, log),
		Throttle:  throttle,
		Transport: failingTransport(t),
		Logger:    log,
	})

	result := f.Get(context.Background(), "https://example.com", "example", nil)

	assert.True(t, result.Skipped)
	assert.Zero(t, result.StatusCode)
	assert.Nil(t, result.Content)
	assert.Empty(t, result.Error)
	assert.Zero(t, atomic.LoadInt32(&throttle.calls), "a skipped request must not consume rate budget")
}

func TestFetcher_MergesHeadersCallerWins(t *testing.T) {
	var got map[string]string
	f := New(Options{
		UserAgent: "OpenFootprint/0.1",
		Timeout:   7 * time.Second,
		Transport: func(_ context.Context, _ string, headers map[string]string, timeout time.Duration) (*Response, error) {
			got = headers
			assert.Equal(t, 7*time.Second, timeout)
			return &Response{StatusCode: 200, Content: []byte("ok")}, nil
		},
		Logger: zaptest.NewLogger(t).Sugar(),
	})

	result := f.Get(context.Background(), "https://api.github.com/users/alice", "github",
		map[string]string{"Accept": "application/json", "User-Agent": "custom"})

	assert.Equal(t, map[string]string{"Accept": "application/json", "User-Agent": "custom"}, got)
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, []byte("ok"), result.Content)
	assert.NotNil(t, result.Headers)
	assert.True(t, result.OK())
}

func TestFetcher_CallerHeadersWinRegardlessOfCase(t *testing.T) {
	var got map[string]string
	f := New(Options{
		UserAgent: "default-ua",
		Transport: func(_ context.Context, _ string, headers map[string]string, _ time.Duration) (*Response, error) {
			got = headers
			return &Response{StatusCode: 200}, nil
		},
		Logger: zaptest.NewLogger(t).Sugar(),
	})

	f.Get(context.Background(), "https://example.com/alice", "example",
		map[string]string{"user-agent": "caller-ua", "accept": "text/html"})

	assert.Equal(t, map[string]string{"User-Agent": "caller-ua", "Accept": "text/html"}, got)
}

func TestFetcher_CallerUserAgentOverHTTP(t *testing.T) {
	var defaults int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.UserAgent() != "caller-ua" {
			atomic.AddInt32(&defaults, 1)
		}
	}))
	defer server.Close()

	f := New(Options{
		UserAgent: "default-ua",
		Timeout:   5 * time.Second,
		Transport: HTTPTransport(httpclient.WrapClient(server.Client())),
		Logger:    zaptest.NewLogger(t).Sugar(),
	})
	for i := 0; i < 50; i++ {
		result := f.Get(context.Background(), server.URL, "example", map[string]string{"user-agent": "caller-ua"})
		require.Empty(t, result.Error)
	}
	assert.Zero(t, atomic.LoadInt32(&defaults), "the default User-Agent must never replace the caller's")
}

func TestFetcher_DefaultUserAgent(t *testing.T) {
	var got map[string]string
	f := New(Options{
		UserAgent: "OpenFootprint/0.1",
		Transport: func(_ context.Context, _ string, headers map[string]string, _ time.Duration) (*Response, error) {
			got = headers
			return &Response{StatusCode: 404}, nil
		},
		Logger: zaptest.NewLogger(t).Sugar(),
	})

	result := f.Get(context.Background(), "https://gitlab.com/alice", "gitlab", nil)

	assert.Equal(t, "OpenFootprint/0.1", got["User-Agent"])
	assert.Equal(t, 404, result.StatusCode)
	assert.False(t, result.OK())
}

func TestFetcher_TransportErrorBecomesResult(t *testing.T) {
	throttle := &countingThrottle{}
	f := New(Options{
		UserAgent: "UA",
		Throttle:  throttle,
		Transport: func(context.Context, string, map[string]string, time.Duration) (*Response, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
		Logger: zaptest.NewLogger(t).Sugar(),
	})

	result := f.Get(context.Background(), "https://example.com/a", "example", nil)

	assert.False(t, result.Skipped)
	assert.Zero(t, result.StatusCode)
	assert.Nil(t, result.Content)
	assert.Equal(t, "dial tcp: connection refused", result.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(&throttle.calls))
}

func TestFetcher_ZeroStatusBecomesError(t *testing.T) {
	f := New(Options{
		UserAgent: "UA",
		Transport: func(context.Context, string, map[string]string, time.Duration) (*Response, error) {
			return &Response{Content: []byte("x")}, nil
		},
		Logger: zaptest.NewLogger(t).Sugar(),
	})

	result := f.Get(context.Background(), "https://example.com/a", "example", nil)

	assert.False(t, result.Skipped)
	assert.Zero(t, result.StatusCode)
	assert.Nil(t, result.Content)
	assert.Equal(t, "transport returned no status", result.Error)
}

func TestFetcher_TransportPanicBecomesResult(t *testing.T) {
	f := New(Options{
		UserAgent: "UA",
		Transport: func(context.Context, string, map[string]string, time.Duration) (*Response, error) {
			panic("boom")
		},
		Logger: zaptest.NewLogger(t).Sugar(),
	})

	result := f.Get(context.Background(), "https://example.com/a", "example", nil)
	assert.Contains(t, result.Error, "boom")
}

func TestFetcher_CancelledDuringThrottle(t *testing.T) {
	limiter := policy.NewRateLimiter(time.Hour)
	f := New(Options{
		UserAgent: "UA",
		Throttle:  limiter,
		Transport: func(context.Context, string, map[string]string, time.Duration) (*Response, error) {
			return &Response{StatusCode: 200}, nil
		},
		Logger: zaptest.NewLogger(t).Sugar(),
	})
	ctx, cancel := context.WithCancel(context.Background())

	first := f.Get(ctx, "https://example.com/a", "example", nil)
	require.Equal(t, 200, first.StatusCode)

	cancel()
	second := f.Get(ctx, "https://example.com/b", "example", nil)
	assert.Contains(t, second.Error, "rate limit wait")
}

func TestFetcher_OverHTTP(t *testing.T) {
	var pageHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	})
	mux.HandleFunc("/alice", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pageHits, 1)
		assert.Equal(t, "OpenFootprint/test", r.UserAgent())
		_, _ = w.Write([]byte("<title>alice</title>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	log := zaptest.NewLogger(t).Sugar()
	client := httpclient.WrapClient(server.Client())
	f := New(Options{
		UserAgent: "OpenFootprint/test",
		Timeout:   5 * time.Second,
		Robots:    policy.NewRobotsPolicy(RobotsFetcher(client, "OpenFootprint/test", time.Second), log),
		Throttle:  policy.NewRateLimiter(0),
		Transport: HTTPTransport(client),
		Logger:    log,
	})
	ctx := context.Background()

	ok := f.Get(ctx, server.URL+"/alice", "example", nil)
	require.Empty(t, ok.Error)
	assert.Equal(t, 200, ok.StatusCode)
	assert.Equal(t, "<title>alice</title>", string(ok.Content))

	skipped := f.Get(ctx, server.URL+"/private/alice", "example", nil)
	assert.True(t, skipped.Skipped)
	assert.Equal(t, int32(1), atomic.LoadInt32(&pageHits))
}

func TestRobotsFetcher_StatusHandling(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{"ok", http.StatusOK, "User-agent: *\nDisallow: /", "User-agent: *\nDisallow: /", false},
		{"not found allows all", http.StatusNotFound, "nope", "", false},
		{"forbidden allows all", http.StatusForbidden, "", "", false},
		{"server error", http.StatusInternalServerError, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			fetch := RobotsFetcher(httpclient.WrapClient(server.Client()), "UA", time.Second)
			body, err := fetch(context.Background(), server.URL+"/robots.txt")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, body)
		})
	}
}
