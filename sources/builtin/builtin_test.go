package builtin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
)

func ids(srcs []sources.Source) []string {
	out := make([]string, 0, len(srcs))
	for _, s := range srcs {
		out = append(out, s.ID())
	}
	return out
}

func TestAll_FixedOrder(t *testing.T) {
	r, err := All("")
	require.NoError(t, err)

	got := ids(r.Sources())
	require.NotEmpty(t, got)
	assert.Equal(t, "github", got[0])
	assert.Equal(t, "github-profile", got[1], "embedded catalog follows the API source")
	assert.Equal(t, []string{
		"mastodon", "bluesky", "openalex", "orcid", "wikidata", "sherlock", "maigret", "whatsmyname",
	}, got[len(got)-8:])

	again, err := All("")
	require.NoError(t, err)
	assert.Equal(t, got, ids(again.Sources()), "assembly is deterministic")
}

func TestAll_ToolSourcesExecute(t *testing.T) {
	r, err := All("")
	require.NoError(t, err)
	for _, id := range []string{"sherlock", "maigret", "whatsmyname"} {
		src, ok := r.Get(id)
		require.True(t, ok, id)
		_, ok = sources.CanExecute(src)
		assert.True(t, ok, id)
	}
	gh, _ := r.Get("github")
	_, ok := sources.CanExecute(gh)
	assert.False(t, ok)
}

func TestAll_ExtraCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`schema_version: "1.2.0"
sources:
  - id: sourcehut
    name: sourcehut
    category: developer
    url_template: https://sr.ht/~{username}
`), 0o644))

	r, err := All(path)
	require.NoError(t, err)
	all := ids(r.Sources())
	assert.Equal(t, "sourcehut", all[len(all)-1], "extra entries come last")
}

func TestAll_ExtraCatalogCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`schema_version: "1.0.0"
sources:
  - id: gitlab
    url_template: https://gitlab.example/{username}
`), 0o644))

	_, err := All(path)
	assert.Error(t, err)
}

func TestAll_MissingExtraCatalog(t *testing.T) {
	_, err := All(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRegistry_AppliesFilters(t *testing.T) {
	cfg := am.Default()
	cfg.Sources.Enabled = []string{"whatsmyname", "github", "orcid", "no-such-source"}
	cfg.Sources.Disabled = []string{"orcid"}

	r, err := Registry(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"github", "whatsmyname"}, ids(r.Sources()), "registration order wins over list order")
}

func TestRegistry_DefaultsToEverything(t *testing.T) {
	all, err := All("")
	require.NoError(t, err)
	r, err := Registry(am.Default())
	require.NoError(t, err)
	assert.Equal(t, all.Len(), r.Len())
}

func TestRegistry_InputsCoverEveryType(t *testing.T) {
	r, err := Registry(am.Default())
	require.NoError(t, err)
	assert.NotEmpty(t, r.ForInputs(map[schema.InputType]bool{schema.InputUsername: true}))
	assert.NotEmpty(t, r.ForInputs(map[schema.InputType]bool{schema.InputName: true}))
}
