package social

import (
	"encoding/json"
	"net/url"
	"strings"

	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/atproto/syntax"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/fetch"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
)

// BlueskyAppView is the unauthenticated AppView endpoint for profile reads
const BlueskyAppView = "https://public.api.bsky.app"

// DefaultBlueskySuffix is appended to bare usernames
const DefaultBlueskySuffix = ".bsky.social"

// Bluesky reads a public profile through app.bsky.actor.getProfile
type Bluesky struct {
	sources.Info
	appView string
}

// NewBluesky creates the bluesky source
func NewBluesky() *Bluesky {
	return &Bluesky{
		Info: sources.Info{
			SourceID:       "bluesky",
			SourceName:     "Bluesky",
			SourceCategory: sources.CategorySocial,
			Inputs:         []schema.InputType{schema.InputUsername},
		},
		appView: BlueskyAppView,
	}
}

// Handle returns the atproto handle a username maps to.
// A bare name gets the default .bsky.social suffix.
func Handle(username string) (syntax.Handle, bool) {
	candidate := strings.TrimPrefix(username, "@")
	if !strings.Contains(candidate, ".") {
		candidate += DefaultBlueskySuffix
	}
	handle, err := syntax.ParseHandle(candidate)
	if err != nil {
		return "", false
	}
	return handle.Normalize(), true
}

// BuildRequests returns one getProfile request when the username is a valid handle
func (b *Bluesky) BuildRequests(in schema.LookupInputs) ([]sources.RequestSpec, error) {
	if in.Username == "" {
		return nil, nil
	}
	handle, ok := Handle(in.Username)
	if !ok {
		return nil, nil
	}
	return []sources.RequestSpec{{
		URL:       b.appView + "/xrpc/app.bsky.actor.getProfile?actor=" + url.QueryEscape(handle.String()),
		InputType: schema.InputUsername,
		Headers:   map[string]string{"Accept": "application/json"},
		Transport: sources.TransportHTTP,
	}}, nil
}

// Parse decodes the profile view
func (b *Bluesky) Parse(result fetch.FetchResult, in schema.LookupInputs, refs []sources.RawRef) ([]schema.Finding, error) {
	if !result.OK() {
		return nil, nil
	}
	var profile appbsky.ActorDefs_ProfileViewDetailed
	if err := json.Unmarshal(result.Content, &profile); err != nil {
		return nil, errors.Wrap(err, "decode bluesky profile")
	}
	if profile.Handle == "" {
		return nil, nil
	}

	displayName := profile.DisplayName
	if displayName != nil && strings.TrimSpace(*displayName) == "" {
		displayName = nil
	}
	evidence := sources.EvidenceFor(b.SourceID, result.URL, b.SourceID+".profile", refs, schema.StringPtr(profile.Handle))

	identifiers := []schema.Identifier{{
		Type:     string(schema.InputUsername),
		Value:    in.Username,
		Evidence: evidence,
	}}
	if profile.Did != "" {
		identifiers = append(identifiers, schema.Identifier{Type: "did", Value: profile.Did, Evidence: evidence})
	}

	return []schema.Finding{{
		SourceID: b.SourceID,
		Type:     schema.FindingProfile,
		Entity: schema.Entity{
			EntityID:    b.SourceID + ":" + profile.Handle,
			DisplayName: displayName,
			ProfileURLs: []string{"https://bsky.app/profile/" + profile.Handle},
			Identifiers: identifiers,
			Evidence:    evidence,
		},
		Artifacts:  []schema.Artifact{},
		Confidence: schema.ConfidenceMedium,
	}}, nil
}
