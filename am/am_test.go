package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance: no user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultUserAgent, cfg.HTTP.UserAgent)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout())
	assert.True(t, cfg.HTTP.BlockPrivateIPs)
	assert.Equal(t, time.Second, cfg.RateLimit.MinInterval())
	assert.Equal(t, "runs", cfg.Output.RunsDir)
	assert.Equal(t, DefaultWorkers, cfg.Lookup.Workers)
	assert.Zero(t, cfg.Lookup.Timeout())
	assert.Equal(t, "python3", cfg.Tools.PythonExecutable)
	assert.Equal(t, 120*time.Second, cfg.Tools.Timeout())
	assert.Empty(t, cfg.Sources.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[rate_limit]
min_interval_seconds = 0.25

[sources]
disabled = ["sherlock", "maigret"]

[tools.env]
HTTPS_PROXY = "http://proxy:3128"
`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.RateLimit.MinInterval())
	assert.Equal(t, []string{"sherlock", "maigret"}, cfg.Sources.Disabled)
	assert.Equal(t, DefaultUserAgent, cfg.HTTP.UserAgent, "untouched keys keep defaults")
	assert.Equal(t, "http://proxy:3128", cfg.Tools.Env["https_proxy"], "viper lower-cases map keys")
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config not found")
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nruns_dir = \"from-file\"\n"), 0644))
	t.Setenv("FOOTPRINT_RUNS_DIR", "from-env")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output.RunsDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"zero interval disables spacing", func(c *Config) { c.RateLimit.MinIntervalSeconds = 0 }, ""},
		{"negative interval", func(c *Config) { c.RateLimit.MinIntervalSeconds = -1 }, "min_interval_seconds"},
		{"no workers", func(c *Config) { c.Lookup.Workers = 0 }, "lookup.workers"},
		{"negative run timeout", func(c *Config) { c.Lookup.TimeoutSeconds = -5 }, "lookup.timeout_seconds"},
		{"empty user agent", func(c *Config) { c.HTTP.UserAgent = "" }, "user_agent"},
		{"empty runs dir", func(c *Config) { c.Output.RunsDir = "" }, "runs_dir"},
		{
			"enabled and disabled overlap",
			func(c *Config) {
				c.Sources.Enabled = []string{"github"}
				c.Sources.Disabled = []string{"github"}
			},
			"both enabled and disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEffective(t *testing.T) {
	eff := Default().Effective()

	httpSection, ok := eff["http"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, DefaultUserAgent, httpSection["user_agent"])
	assert.Contains(t, eff, "rate_limit")
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "am.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().HTTP, cfg.HTTP)
	assert.Equal(t, Default().Lookup, cfg.Lookup)

	assert.Error(t, WriteDefault(path), "existing config must not be overwritten")
}

func TestGetWorkers(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 1, cfg.GetWorkers())
	cfg.Lookup.Workers = 8
	assert.Equal(t, 8, cfg.GetWorkers())
	assert.Equal(t, DefaultDatabasePath, cfg.GetDatabasePath())
}
