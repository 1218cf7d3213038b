package am

import "time"

// Config represents the footprint configuration
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http" toml:"http" json:"http" yaml:"http"`
	Robots    RobotsConfig    `mapstructure:"robots" toml:"robots" json:"robots" yaml:"robots"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" toml:"rate_limit" json:"rate_limit" yaml:"rate_limit"`
	Sources   SourcesConfig   `mapstructure:"sources" toml:"sources" json:"sources" yaml:"sources"`
	Output    OutputConfig    `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Lookup    LookupConfig    `mapstructure:"lookup" toml:"lookup" json:"lookup" yaml:"lookup"`
	Tools     ToolsConfig     `mapstructure:"tools" toml:"tools" json:"tools" yaml:"tools"`
	Database  DatabaseConfig  `mapstructure:"database" toml:"database" json:"database" yaml:"database"`
}

// HTTPConfig configures the client identity and transport used for every fetch
type HTTPConfig struct {
	UserAgent       string `mapstructure:"user_agent" toml:"user_agent" json:"user_agent" yaml:"user_agent"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
	BlockPrivateIPs bool   `mapstructure:"block_private_ips" toml:"block_private_ips" json:"block_private_ips" yaml:"block_private_ips"`
}

// Timeout returns the per-request transport timeout
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// RobotsConfig configures robots.txt handling
type RobotsConfig struct {
	Enabled        bool `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`
	TimeoutSeconds int  `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the robots.txt fetch timeout
func (r RobotsConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// RateLimitConfig configures per-source request spacing
type RateLimitConfig struct {
	MinIntervalSeconds float64 `mapstructure:"min_interval_seconds" toml:"min_interval_seconds" json:"min_interval_seconds" yaml:"min_interval_seconds"`
}

// MinInterval returns the minimum spacing between two requests of one source
func (r RateLimitConfig) MinInterval() time.Duration {
	return time.Duration(r.MinIntervalSeconds * float64(time.Second))
}

// SourcesConfig selects which sources take part in a lookup
type SourcesConfig struct {
	Enabled     []string `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`     // empty = all
	Disabled    []string `mapstructure:"disabled" toml:"disabled" json:"disabled" yaml:"disabled"` // applied after enabled
	CatalogPath string   `mapstructure:"catalog_path" toml:"catalog_path" json:"catalog_path" yaml:"catalog_path"`
}

// OutputConfig configures where runs are written
type OutputConfig struct {
	RunsDir string `mapstructure:"runs_dir" toml:"runs_dir" json:"runs_dir" yaml:"runs_dir"`
}

// LookupConfig configures pipeline concurrency
type LookupConfig struct {
	Workers        int `mapstructure:"workers" toml:"workers" json:"workers" yaml:"workers"`                         // concurrent source lanes, 1 = sequential
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"` // 0 = no run deadline
}

// Timeout returns the whole-run deadline, zero when unbounded
func (l LookupConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// ToolsConfig configures external scanners driven through the command runner
type ToolsConfig struct {
	PythonExecutable string            `mapstructure:"python_executable" toml:"python_executable" json:"python_executable" yaml:"python_executable"`
	TimeoutSeconds   int               `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
	SherlockPath     string            `mapstructure:"sherlock_path" toml:"sherlock_path" json:"sherlock_path" yaml:"sherlock_path"`
	MaigretPath      string            `mapstructure:"maigret_path" toml:"maigret_path" json:"maigret_path" yaml:"maigret_path"`
	WhatsMyNamePath  string            `mapstructure:"whatsmyname_path" toml:"whatsmyname_path" json:"whatsmyname_path" yaml:"whatsmyname_path"`
	WhatsMyNameData  string            `mapstructure:"whatsmyname_data" toml:"whatsmyname_data" json:"whatsmyname_data" yaml:"whatsmyname_data"` // path or go-getter URL
	Env              map[string]string `mapstructure:"env" toml:"env" json:"env" yaml:"env"`
}

// Timeout returns the per-tool process timeout
func (t ToolsConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// DatabaseConfig configures the SQLite run index
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
