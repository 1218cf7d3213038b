package sources

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/teranos/footprint/fetch"
	"github.com/teranos/footprint/schema"
)

// UsernamePlaceholder is substituted in profile URL templates
const UsernamePlaceholder = "{username}"

// ProfileSource checks for a public profile page at a URL derived from the username.
// A 200 response with a body is a hit; the page title becomes the display name.
type ProfileSource struct {
	Info        `yaml:",inline"`
	URLTemplate string            `yaml:"url_template" json:"url_template"`
	Headers     map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	// AbsentMarkers are body substrings that mean "no such user" despite a 200
	AbsentMarkers []string `yaml:"absent_markers,omitempty" json:"absent_markers,omitempty"`
}

// NewProfileSource creates a username profile source
func NewProfileSource(id, name, category, urlTemplate string) *ProfileSource {
	return &ProfileSource{
		Info: Info{
			SourceID:       id,
			SourceName:     name,
			SourceCategory: category,
			Inputs:         []schema.InputType{schema.InputUsername},
		},
		URLTemplate: urlTemplate,
	}
}

// ProfileURL renders the template for username. The placeholder is
// path-escaped, or query-escaped when it follows the template's '?'.
func (p *ProfileSource) ProfileURL(username string) string {
	path, query, hasQuery := strings.Cut(p.URLTemplate, "?")
	rendered := strings.ReplaceAll(path, UsernamePlaceholder, url.PathEscape(username))
	if hasQuery {
		rendered += "?" + strings.ReplaceAll(query, UsernamePlaceholder, url.QueryEscape(username))
	}
	return rendered
}

// BuildRequests returns one request when a username is present
func (p *ProfileSource) BuildRequests(in schema.LookupInputs) ([]RequestSpec, error) {
	if in.Username == "" {
		return nil, nil
	}
	return []RequestSpec{{
		URL:       p.ProfileURL(in.Username),
		InputType: schema.InputUsername,
		Headers:   p.Headers,
		Transport: TransportHTTP,
	}}, nil
}

// Parse emits one profile finding for a 200 response with content
func (p *ProfileSource) Parse(result fetch.FetchResult, in schema.LookupInputs, refs []RawRef) ([]schema.Finding, error) {
	if !result.OK() {
		return nil, nil
	}
	for _, marker := range p.AbsentMarkers {
		if marker != "" && bytes.Contains(result.Content, []byte(marker)) {
			return nil, nil
		}
	}
	title := ExtractTitle(result.Content)
	return []schema.Finding{ProfileFinding(p.SourceID, result.URL, in.Username, title, refs)}, nil
}

// ProfileFinding builds the standard username profile finding
func ProfileFinding(sourceID, profileURL, username string, displayName *string, refs []RawRef) schema.Finding {
	evidence := EvidenceFor(sourceID, profileURL, sourceID+".profile", refs, displayName)
	return schema.Finding{
		SourceID: sourceID,
		Type:     schema.FindingProfile,
		Entity: schema.Entity{
			EntityID:    sourceID + ":" + username,
			DisplayName: displayName,
			ProfileURLs: []string{profileURL},
			Identifiers: []schema.Identifier{{
				Type:     string(schema.InputUsername),
				Value:    username,
				Evidence: evidence,
			}},
			Evidence: evidence,
		},
		Artifacts:  []schema.Artifact{},
		Confidence: schema.ConfidenceMedium,
	}
}

// ExtractTitle returns the whitespace-collapsed text of the first <title>, or nil
func ExtractTitle(content []byte) *string {
	z := html.NewTokenizer(bytes.NewReader(content))
	inTitle := false
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Title {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && atom.Lookup(name) == atom.Title {
				return collapse(b.String())
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		}
	}
}

func collapse(s string) *string {
	return schema.StringPtr(strings.Join(strings.Fields(s), " "))
}
