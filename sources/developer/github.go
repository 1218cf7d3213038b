// Package developer holds sources backed by developer platform APIs.
package developer

import (
	"encoding/json"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/fetch"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
)

// GitHubAPI is the REST API root
const GitHubAPI = "https://api.github.com"

// GitHub reads a public user through the unauthenticated REST API.
// The response carries the public email and real name, so this source
// contributes more identifiers than the plain profile page.
type GitHub struct {
	sources.Info
	apiBase string
}

// NewGitHub creates the github source
func NewGitHub() *GitHub {
	return &GitHub{
		Info: sources.Info{
			SourceID:       "github",
			SourceName:     "GitHub",
			SourceCategory: sources.CategoryDeveloper,
			Inputs:         []schema.InputType{schema.InputUsername},
		},
		apiBase: GitHubAPI,
	}
}

// BuildRequests returns one users/<username> request
func (g *GitHub) BuildRequests(in schema.LookupInputs) ([]sources.RequestSpec, error) {
	if in.Username == "" || strings.Contains(in.Username, "@") {
		return nil, nil
	}
	return []sources.RequestSpec{{
		URL:       g.apiBase + "/users/" + url.PathEscape(in.Username),
		InputType: schema.InputUsername,
		Headers: map[string]string{
			"Accept":               "application/vnd.github+json",
			"X-GitHub-Api-Version": "2022-11-28",
		},
		Transport: sources.TransportHTTP,
	}}, nil
}

// Parse decodes the user object
func (g *GitHub) Parse(result fetch.FetchResult, in schema.LookupInputs, refs []sources.RawRef) ([]schema.Finding, error) {
	if !result.OK() {
		return nil, nil
	}
	var user gh.User
	if err := json.Unmarshal(result.Content, &user); err != nil {
		return nil, errors.Wrap(err, "decode github user")
	}
	login := user.GetLogin()
	if login == "" {
		return nil, nil
	}

	var displayName *string
	if name := strings.TrimSpace(user.GetName()); name != "" {
		displayName = &name
	}
	evidence := sources.EvidenceFor(g.SourceID, result.URL, g.SourceID+".api", refs, schema.StringPtr(login))

	identifiers := []schema.Identifier{{
		Type:     string(schema.InputUsername),
		Value:    in.Username,
		Evidence: evidence,
	}}
	if email := user.GetEmail(); email != "" {
		identifiers = append(identifiers, schema.Identifier{
			Type:     string(schema.InputEmail),
			Value:    schema.NormalizeEmail(email),
			Evidence: evidence,
		})
	}
	if displayName != nil {
		identifiers = append(identifiers, schema.Identifier{
			Type:     string(schema.InputName),
			Value:    *displayName,
			Evidence: evidence,
		})
	}

	profileURLs := []string{}
	if html := user.GetHTMLURL(); html != "" {
		profileURLs = append(profileURLs, html)
	}
	if blog := strings.TrimSpace(user.GetBlog()); blog != "" {
		profileURLs = append(profileURLs, blog)
	}

	artifacts := []schema.Artifact{}
	if bio := strings.TrimSpace(user.GetBio()); bio != "" {
		artifacts = append(artifacts, schema.Artifact{
			URL:      user.GetHTMLURL(),
			Title:    schema.StringPtr("bio"),
			Snippet:  &bio,
			Evidence: evidence,
		})
	}

	return []schema.Finding{{
		SourceID: g.SourceID,
		Type:     schema.FindingProfile,
		Entity: schema.Entity{
			EntityID:    g.SourceID + ":" + strings.ToLower(login),
			DisplayName: displayName,
			ProfileURLs: profileURLs,
			Identifiers: identifiers,
			Evidence:    evidence,
		},
		Artifacts:  artifacts,
		Confidence: schema.ConfidenceHigh,
	}}, nil
}
