package policy

import (
	"context"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/logger"
)

// RobotsFetcher returns the body of robotsURL.
// An empty body means the origin publishes no rules. An error means the rules
// could not be determined.
type RobotsFetcher func(ctx context.Context, robotsURL string) (string, error)

// RobotsPolicy decides whether a URL may be fetched, caching the parsed
// robots.txt of every origin it has seen. The cache lives as long as the
// policy, which is one lookup run.
//
// A fetch or parse failure fails open: the origin is treated as allowing
// everything and a warning is logged once.
type RobotsPolicy struct {
	fetch  RobotsFetcher
	logger *zap.SugaredLogger

	mu    sync.RWMutex
	cache map[string]*robotstxt.RobotsData // nil value = failed open

	group singleflight.Group
}

// NewRobotsPolicy creates a policy that loads rules through fetch
func NewRobotsPolicy(fetch RobotsFetcher, log *zap.SugaredLogger) *RobotsPolicy {
	if log == nil {
		log = logger.ComponentLogger("robots")
	}
	return &RobotsPolicy{
		fetch:  fetch,
		logger: log,
		cache:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allows reports whether userAgent may fetch rawURL.
// Concurrent first calls for one origin share a single robots.txt fetch.
func (p *RobotsPolicy) Allows(ctx context.Context, rawURL, userAgent string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		p.logger.Warnw("Cannot evaluate robots.txt for malformed URL, allowing",
			logger.FieldURL, rawURL)
		return true
	}

	rules := p.rulesFor(ctx, Origin(u))
	if rules == nil {
		return true
	}
	return rules.TestAgent(u.RequestURI(), userAgent)
}

// Cached reports whether origin already has a cached decision
func (p *RobotsPolicy) Cached(origin string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.cache[origin]
	return ok
}

func (p *RobotsPolicy) rulesFor(ctx context.Context, origin string) *robotstxt.RobotsData {
	p.mu.RLock()
	rules, ok := p.cache[origin]
	p.mu.RUnlock()
	if ok {
		return rules
	}

	v, _, _ := p.group.Do(origin, func() (interface{}, error) {
		// another caller may have finished while we waited for the lock
		p.mu.RLock()
		rules, ok := p.cache[origin]
		p.mu.RUnlock()
		if ok {
			return rules, nil
		}

		rules = p.load(ctx, origin)

		p.mu.Lock()
		p.cache[origin] = rules
		p.mu.Unlock()
		return rules, nil
	})
	return v.(*robotstxt.RobotsData)
}

func (p *RobotsPolicy) load(ctx context.Context, origin string) *robotstxt.RobotsData {
	robotsURL := origin + "/robots.txt"

	body, err := p.fetch(ctx, robotsURL)
	if err != nil {
		p.logger.Warnw("robots.txt unavailable, allowing all paths",
			logger.FieldOrigin, origin,
			logger.FieldError, err.Error())
		return nil
	}

	rules, err := robotstxt.FromString(body)
	if err != nil {
		p.logger.Warnw("robots.txt unparsable, allowing all paths",
			logger.FieldOrigin, origin,
			logger.FieldError, errors.Wrap(err, "parse robots.txt").Error())
		return nil
	}
	return rules
}

// Origin returns scheme://host[:port] for u
func Origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
