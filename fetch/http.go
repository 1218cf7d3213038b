package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/internal/httpclient"
	"github.com/teranos/footprint/policy"
)

// HTTPTransport adapts the SSRF-guarded client to a Transport
func HTTPTransport(client *httpclient.SaferClient) Transport {
	return func(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*Response, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := client.Fetch(ctx, http.MethodGet, url, headers, nil)
		if err != nil {
			return nil, err
		}
		return &Response{StatusCode: resp.StatusCode, Headers: resp.Headers, Content: resp.Content}, nil
	}
}

// RobotsFetcher loads robots.txt through the guarded client.
// 2xx yields the body. 4xx means the origin has no rules, so it yields "".
// Anything else is an error and the policy fails open.
func RobotsFetcher(client *httpclient.SaferClient, userAgent string, timeout time.Duration) policy.RobotsFetcher {
	return func(ctx context.Context, robotsURL string) (string, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := client.Fetch(ctx, http.MethodGet, robotsURL, map[string]string{"User-Agent": userAgent}, nil)
		if err != nil {
			return "", err
		}
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return string(resp.Content), nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return "", nil
		default:
			return "", errors.Newf("robots.txt returned status %d", resp.StatusCode)
		}
	}
}
