package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/footprint/fetch"
	"github.com/teranos/footprint/schema"
)

func fixedClock(t *testing.T) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return time.Date(2026, 10, 19, 6, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = prev })
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want *string
	}{
		{"simple", "<html><head><title>alice (Alice Smith)</title></head></html>", schema.StringPtr("alice (Alice Smith)")},
		{"whitespace collapsed", "<title>\n  Alice\n\t Smith  </title>", schema.StringPtr("Alice Smith")},
		{"entities", "<title>Tom &amp; Jerry</title>", schema.StringPtr("Tom & Jerry")},
		{"first title wins", "<title>one</title><svg><title>two</title></svg>", schema.StringPtr("one")},
		{"empty title", "<title>   </title>", nil},
		{"no title", "<html><body>hi</body></html>", nil},
		{"not html", "\x00\x01binary", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle([]byte(tt.html)))
		})
	}
}

func TestProfileSource_BuildRequests(t *testing.T) {
	src := NewProfileSource("gitlab", "GitLab", CategoryDeveloper, "https://gitlab.com/{username}")

	reqs, err := src.BuildRequests(schema.LookupInputs{Username: "alice"})
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "https://gitlab.com/alice", reqs[0].URL)
	assert.Equal(t, schema.InputUsername, reqs[0].InputType)
	assert.Equal(t, TransportHTTP, reqs[0].Transport)

	reqs, err = src.BuildRequests(schema.LookupInputs{Name: "Alice"})
	require.NoError(t, err)
	assert.Empty(t, reqs)

	assert.Equal(t, "https://gitlab.com/a%2Fb", src.ProfileURL("a/b"))
}

func TestProfileSource_ProfileURLEscaping(t *testing.T) {
	hn := NewProfileSource("hackernews", "Hacker News", CategorySocial, "https://news.ycombinator.com/user?id={username}")
	assert.Equal(t, "https://news.ycombinator.com/user?id=a%26b%2Bc%3Dd", hn.ProfileURL("a&b+c=d"))
	assert.Equal(t, "https://news.ycombinator.com/user?id=a+b", hn.ProfileURL("a b"))

	path := NewProfileSource("gitlab", "GitLab", CategoryDeveloper, "https://gitlab.com/{username}")
	assert.Equal(t, "https://gitlab.com/a&b+c=d", path.ProfileURL("a&b+c=d"))
	assert.Equal(t, "https://gitlab.com/a%20b", path.ProfileURL("a b"))

	both := NewProfileSource("x", "X", CategorySocial, "https://x.example/{username}/feed?u={username}")
	assert.Equal(t, "https://x.example/a%2Fb/feed?u=a%2Fb", both.ProfileURL("a/b"))
}

func TestProfileSource_Parse(t *testing.T) {
	fixedClock(t)
	src := NewProfileSource("gitlab", "GitLab", CategoryDeveloper, "https://gitlab.com/{username}")
	in := schema.LookupInputs{Username: "alice"}
	refs := []RawRef{{Path: "runs/x/raw/abc.bin", Hash: "deadbeef"}}

	findings, err := src.Parse(fetch.FetchResult{
		URL:        "https://gitlab.com/alice",
		StatusCode: 200,
		Content:    []byte("<title>Alice · GitLab</title>"),
	}, in, refs)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "gitlab", f.SourceID)
	assert.Equal(t, schema.FindingProfile, f.Type)
	assert.Equal(t, schema.ConfidenceMedium, f.Confidence)
	assert.Equal(t, "gitlab:alice", f.Entity.EntityID)
	assert.Equal(t, "Alice · GitLab", *f.Entity.DisplayName)
	assert.Equal(t, []string{"https://gitlab.com/alice"}, f.Entity.ProfileURLs)
	require.Len(t, f.Entity.Identifiers, 1)
	assert.Equal(t, "username:alice", f.Entity.Identifiers[0].Key())

	require.Len(t, f.Entity.Evidence, 1)
	ev := f.Entity.Evidence[0]
	assert.Equal(t, "gitlab.profile", ev.ParserID)
	assert.Equal(t, "runs/x/raw/abc.bin", ev.RawPath)
	assert.Equal(t, "deadbeef", ev.RawHash)
	assert.Equal(t, "2026-10-19T06:30:00Z", ev.FetchedAt)
	assert.Equal(t, f.Entity.Evidence, f.Entity.Identifiers[0].Evidence)
}

func TestProfileSource_ParseMisses(t *testing.T) {
	src := NewProfileSource("hackernews", "Hacker News", CategorySocial, "https://news.ycombinator.com/user?id={username}")
	src.AbsentMarkers = []string{"No such user."}
	in := schema.LookupInputs{Username: "alice"}

	tests := []struct {
		name   string
		result fetch.FetchResult
	}{
		{"not found", fetch.FetchResult{StatusCode: 404, Content: []byte("<title>404</title>")}},
		{"empty body", fetch.FetchResult{StatusCode: 200}},
		{"skipped", fetch.FetchResult{Skipped: true}},
		{"error", fetch.FetchResult{Error: "timeout"}},
		{"absent marker", fetch.FetchResult{StatusCode: 200, Content: []byte("No such user.")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := src.Parse(tt.result, in, nil)
			require.NoError(t, err)
			assert.Empty(t, findings)
		})
	}
}
