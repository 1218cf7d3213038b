// Package fetch performs one policy-checked HTTP request on behalf of a source.
//
// Every request passes, in order, through the robots.txt policy, the per-source
// rate limiter, header merging and the transport. Get never returns an error:
// a skip, a transport failure and a response are all encoded in FetchResult.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/footprint/logger"
	"github.com/teranos/footprint/sym"
)

// FetchResult is the outcome of one HTTP attempt.
// Exactly one of Skipped, Error != "" or StatusCode != 0 holds.
type FetchResult struct {
	URL        string            `json:"url"`
	StatusCode int               `json:"status_code,omitempty"` // 0 when no attempt was made
	Headers    map[string]string `json:"headers"`
	Content    []byte            `json:"-"` // nil on skip or error
	Error      string            `json:"error,omitempty"`
	Skipped    bool              `json:"skipped"`
}

// OK reports whether a response was received with a 200 status and a body
func (r FetchResult) OK() bool {
	return r.StatusCode == 200 && len(r.Content) > 0
}

// Response is what a Transport returns on success
type Response struct {
	StatusCode int
	Headers    map[string]string
	Content    []byte
}

// Transport performs the network call. It returns an error only for
// transport-level failures; any HTTP status is a successful Response.
type Transport func(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*Response, error)

// RobotsChecker is the politeness gate consulted before any network attempt
type RobotsChecker interface {
	Allows(ctx context.Context, url, userAgent string) bool
}

// Throttle spaces requests sharing a key
type Throttle interface {
	Wait(ctx context.Context, key string) (time.Duration, error)
}

// Fetcher composes policy, throttling and transport
type Fetcher struct {
	userAgent string
	timeout   time.Duration
	robots    RobotsChecker // nil = robots.txt not consulted
	throttle  Throttle
	transport Transport
	logger    *zap.SugaredLogger
}

// Options configures a Fetcher
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Robots    RobotsChecker
	Throttle  Throttle
	Transport Transport
	Logger    *zap.SugaredLogger
}

// New creates a Fetcher
func New(opts Options) *Fetcher {
	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("fetch")
	}
	return &Fetcher{
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		robots:    opts.Robots,
		throttle:  opts.Throttle,
		transport: opts.Transport,
		logger:    log,
	}
}

// Get fetches url on behalf of sourceID.
// A robots veto returns immediately, before the source's rate budget is charged.
// The throttling key is the source, so all URLs of one source share a budget.
func (f *Fetcher) Get(ctx context.Context, url, sourceID string, headers map[string]string) (result FetchResult) {
	log := f.logger.With(logger.FieldSourceID, sourceID, logger.FieldURL, url)

	if f.robots != nil && !f.robots.Allows(ctx, url, f.userAgent) {
		log.Infow("Disallowed by robots.txt, skipping", logger.FieldSkipped, true)
		return FetchResult{URL: url, Headers: map[string]string{}, Skipped: true}
	}

	if f.throttle != nil {
		slept, err := f.throttle.Wait(ctx, sourceID)
		if err != nil {
			return errorResult(url, fmt.Sprintf("rate limit wait: %v", err))
		}
		if slept > 0 {
			log.Debugw("Throttled", logger.FieldSymbol, sym.Throttle, logger.FieldSleepMS, slept.Milliseconds())
		}
	}

	merged := make(map[string]string, len(headers)+1)
	merged["User-Agent"] = f.userAgent
	for k, v := range headers {
		merged[http.CanonicalHeaderKey(k)] = v
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warnw("Transport panicked", logger.FieldError, fmt.Sprint(r))
			result = errorResult(url, fmt.Sprintf("transport panic: %v", r))
		}
	}()

	start := time.Now()
	resp, err := f.transport(ctx, url, merged, f.timeout)
	if err != nil {
		log.Infow("Fetch failed", logger.FieldError, err.Error())
		return errorResult(url, err.Error())
	}
	if resp == nil || resp.StatusCode == 0 {
		log.Infow("Fetch returned no status")
		return errorResult(url, "transport returned no status")
	}

	log.Debugw("Fetched",
		logger.FieldStatus, resp.StatusCode,
		logger.FieldSize, len(resp.Content),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	respHeaders := resp.Headers
	if respHeaders == nil {
		respHeaders = map[string]string{}
	}
	return FetchResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		Headers:    respHeaders,
		Content:    resp.Content,
	}
}

func errorResult(url, msg string) FetchResult {
	if msg == "" {
		msg = "unknown transport error"
	}
	return FetchResult{URL: url, Headers: map[string]string{}, Error: msg}
}
