package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	info := Info{CommitHash: "0123456789abcdef", BuildTime: "2026-10-19", Version: "dev"}
	assert.Equal(t, "footprint dev (commit 0123456789abcdef, built 2026-10-19)", info.String())
	assert.Equal(t, "0123456", info.Short())

	info.Version = "v0.3.0"
	assert.Equal(t, "footprint v0.3.0 (commit 0123456789abcdef, built 2026-10-19)", info.String())
}

func TestGetFillsRuntime(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
