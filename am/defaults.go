package am

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"
)

// Default values shared by SetDefaults and callers that build a Config by hand
const (
	DefaultUserAgent          = "OpenFootprint/0.1 (+https://example.com)"
	DefaultHTTPTimeoutSeconds = 15
	DefaultMinIntervalSeconds = 1.0
	DefaultRunsDir            = "runs"
	DefaultWorkers            = 4
	DefaultToolTimeoutSeconds = 120
	DefaultDatabasePath       = "footprint.db"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// HTTP client identity
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.timeout_seconds", DefaultHTTPTimeoutSeconds)
	v.SetDefault("http.block_private_ips", true)

	// robots.txt
	v.SetDefault("robots.enabled", true)
	v.SetDefault("robots.timeout_seconds", 10)

	// Per-source spacing
	v.SetDefault("rate_limit.min_interval_seconds", DefaultMinIntervalSeconds)

	// Source selection
	v.SetDefault("sources.enabled", []string{})
	v.SetDefault("sources.disabled", []string{})
	v.SetDefault("sources.catalog_path", "")

	v.SetDefault("output.runs_dir", DefaultRunsDir)

	v.SetDefault("lookup.workers", DefaultWorkers)
	v.SetDefault("lookup.timeout_seconds", 0) // no deadline

	// External tools
	v.SetDefault("tools.python_executable", "python3")
	v.SetDefault("tools.timeout_seconds", DefaultToolTimeoutSeconds)
	v.SetDefault("tools.sherlock_path", "third_party/sherlock")
	v.SetDefault("tools.maigret_path", "third_party/maigret")
	v.SetDefault("tools.whatsmyname_path", "third_party/WhatsMyName")
	v.SetDefault("tools.whatsmyname_data", "")
	v.SetDefault("tools.env", map[string]string{})

	// Run index
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.path", DefaultDatabasePath)
}

// BindSensitiveEnvVars explicitly binds values commonly overridden per shell
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("output.runs_dir", "FOOTPRINT_RUNS_DIR")
	v.BindEnv("database.path", "FOOTPRINT_DATABASE_PATH")
	v.BindEnv("http.user_agent", "FOOTPRINT_USER_AGENT")
}

// Default returns a Config populated with the built-in defaults only
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// defaults always decode; a failure here is a programming error
		panic(err)
	}
	return cfg
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetWorkers returns the lane count, never below one
func (c *Config) GetWorkers() int {
	if c.Lookup.Workers < 1 {
		return 1
	}
	return c.Lookup.Workers
}

// Effective returns the configuration as a plain map for embedding in run manifests
func (c *Config) Effective() map[string]interface{} {
	data, err := json.Marshal(c)
	if err != nil {
		return map[string]interface{}{}
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{RunsDir: %s, MinInterval: %.2fs, Workers: %d, Database: %s}",
		c.Output.RunsDir, c.RateLimit.MinIntervalSeconds, c.Lookup.Workers, c.Database.Path)
}
