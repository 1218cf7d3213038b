package lookup

import (
	"context"
	"strings"
	"testing"

	"github.com/teranos/footprint/fetch"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
)

// testSource is a configurable HTTP source
type testSource struct {
	sources.Info
	build func(in schema.LookupInputs) ([]sources.RequestSpec, error)
	parse func(result fetch.FetchResult, in schema.LookupInputs, refs []sources.RawRef) ([]schema.Finding, error)
}

func (s *testSource) BuildRequests(in schema.LookupInputs) ([]sources.RequestSpec, error) {
	if s.build == nil {
		return nil, nil
	}
	return s.build(in)
}

func (s *testSource) Parse(result fetch.FetchResult, in schema.LookupInputs, refs []sources.RawRef) ([]schema.Finding, error) {
	if s.parse == nil {
		return nil, nil
	}
	return s.parse(result, in, refs)
}

// toolTestSource adds tool execution
type toolTestSource struct {
	testSource
	exec func(ctx context.Context, req sources.ExecRequest) ([]schema.Finding, error)
}

func (s *toolTestSource) Execute(ctx context.Context, req sources.ExecRequest) ([]schema.Finding, error) {
	return s.exec(ctx, req)
}

func info(id string, inputs ...schema.InputType) sources.Info {
	return sources.Info{SourceID: id, SourceName: strings.ToUpper(id), SourceCategory: "test", Inputs: inputs}
}

// usernameSource requests one URL per listed path and parses every 200 into
// a username finding
func usernameSource(id string, urls ...string) *testSource {
	return &testSource{
		Info: info(id, schema.InputUsername),
		build: func(in schema.LookupInputs) ([]sources.RequestSpec, error) {
			if in.Username == "" {
				return nil, nil
			}
			specs := make([]sources.RequestSpec, 0, len(urls))
			for _, u := range urls {
				specs = append(specs, sources.RequestSpec{URL: u, InputType: schema.InputUsername})
			}
			return specs, nil
		},
		parse: func(result fetch.FetchResult, in schema.LookupInputs, refs []sources.RawRef) ([]schema.Finding, error) {
			if !result.OK() {
				return nil, nil
			}
			return []schema.Finding{usernameFinding(id, in.Username, result.URL, refs)}, nil
		},
	}
}

func usernameFinding(sourceID, username, url string, refs []sources.RawRef) schema.Finding {
	evidence := sources.EvidenceFor(sourceID, url, sourceID+".test", refs, nil)
	return schema.Finding{
		SourceID: sourceID,
		Type:     schema.FindingProfile,
		Entity: schema.Entity{
			EntityID:    sourceID + ":" + username,
			ProfileURLs: []string{url},
			Identifiers: []schema.Identifier{{Type: "username", Value: username, Evidence: evidence}},
			Evidence:    evidence,
		},
		Artifacts:  []schema.Artifact{},
		Confidence: schema.ConfidenceMedium,
	}
}

func registry(t *testing.T, srcs ...sources.Source) *sources.Registry {
	t.Helper()
	r, err := sources.NewRegistry(srcs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return r
}
