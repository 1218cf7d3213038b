package am

import "github.com/teranos/footprint/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.HTTP.UserAgent == "" {
		return errors.New("http.user_agent cannot be empty")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return errors.Newf("http.timeout_seconds must be > 0, got %d", c.HTTP.TimeoutSeconds)
	}
	if c.Robots.Enabled && c.Robots.TimeoutSeconds <= 0 {
		return errors.Newf("robots.timeout_seconds must be > 0 when robots is enabled, got %d", c.Robots.TimeoutSeconds)
	}

	// 0 disables spacing, negative is invalid
	if c.RateLimit.MinIntervalSeconds < 0 {
		return errors.Newf("rate_limit.min_interval_seconds must be >= 0, got %f", c.RateLimit.MinIntervalSeconds)
	}

	if c.Lookup.Workers < 1 {
		return errors.Newf("lookup.workers must be >= 1, got %d", c.Lookup.Workers)
	}
	if c.Lookup.TimeoutSeconds < 0 {
		return errors.Newf("lookup.timeout_seconds must be >= 0, got %d", c.Lookup.TimeoutSeconds)
	}
	if c.Tools.TimeoutSeconds <= 0 {
		return errors.Newf("tools.timeout_seconds must be > 0, got %d", c.Tools.TimeoutSeconds)
	}

	if c.Output.RunsDir == "" {
		return errors.New("output.runs_dir cannot be empty")
	}

	disabled := make(map[string]bool, len(c.Sources.Disabled))
	for _, id := range c.Sources.Disabled {
		disabled[id] = true
	}
	for _, id := range c.Sources.Enabled {
		if disabled[id] {
			return errors.WithHintf(
				errors.Newf("source %q is both enabled and disabled", id),
				"remove %q from sources.enabled or sources.disabled", id)
		}
	}

	return nil
}
