// Package directories holds name-search sources over public research and
// knowledge directories. Each keeps only the first hit, at low confidence:
// a name search is a lead, not a match.
package directories

import (
	"encoding/json"
	"net/url"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/fetch"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
)

// hit is the part of a search result every directory can provide
type hit struct {
	id          string
	displayName *string
	profileURL  string
}

// searchSource is the shared shape of a name-search directory
type searchSource struct {
	sources.Info
	searchURL func(name string) string
	headers   map[string]string
	firstHit  func(body []byte, in schema.LookupInputs) (*hit, error)
}

func newSearchSource(id, name string) searchSource {
	return searchSource{Info: sources.Info{
		SourceID:       id,
		SourceName:     name,
		SourceCategory: sources.CategoryDirectories,
		Inputs:         []schema.InputType{schema.InputName},
	}}
}

func (s *searchSource) BuildRequests(in schema.LookupInputs) ([]sources.RequestSpec, error) {
	if in.Name == "" {
		return nil, nil
	}
	return []sources.RequestSpec{{
		URL:       s.searchURL(in.Name),
		InputType: schema.InputName,
		Headers:   s.headers,
		Transport: sources.TransportHTTP,
	}}, nil
}

func (s *searchSource) Parse(result fetch.FetchResult, in schema.LookupInputs, refs []sources.RawRef) ([]schema.Finding, error) {
	if !result.OK() {
		return nil, nil
	}
	h, err := s.firstHit(result.Content, in)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s search", s.SourceID)
	}
	if h == nil {
		return nil, nil
	}

	id := h.id
	if id == "" {
		id = "unknown"
	}
	evidence := sources.EvidenceFor(s.SourceID, result.URL, s.SourceID+".search", refs, schema.StringPtr(in.Name))
	return []schema.Finding{{
		SourceID: s.SourceID,
		Type:     schema.FindingDirectory,
		Entity: schema.Entity{
			EntityID:    s.SourceID + ":" + id,
			DisplayName: h.displayName,
			ProfileURLs: []string{h.profileURL},
			Identifiers: []schema.Identifier{{
				Type:     string(schema.InputName),
				Value:    in.Name,
				Evidence: evidence,
			}},
			Evidence: evidence,
		},
		Artifacts:  []schema.Artifact{},
		Confidence: schema.ConfidenceLow,
	}}, nil
}

// OpenAlex searches authors
type OpenAlex struct{ searchSource }

// NewOpenAlex creates the openalex source
func NewOpenAlex() *OpenAlex {
	s := &OpenAlex{newSearchSource("openalex", "OpenAlex")}
	s.searchURL = func(name string) string {
		return "https://api.openalex.org/authors?search=" + url.QueryEscape(name)
	}
	s.firstHit = func(body []byte, _ schema.LookupInputs) (*hit, error) {
		var payload struct {
			Results []struct {
				ID          string  `json:"id"`
				DisplayName *string `json:"display_name"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		if len(payload.Results) == 0 {
			return nil, nil
		}
		first := payload.Results[0]
		return &hit{id: first.ID, displayName: first.DisplayName, profileURL: first.ID}, nil
	}
	return s
}

// ORCID searches the public registry
type ORCID struct{ searchSource }

// NewORCID creates the orcid source
func NewORCID() *ORCID {
	s := &ORCID{newSearchSource("orcid", "ORCID")}
	s.searchURL = func(name string) string {
		return "https://pub.orcid.org/v3.0/search/?q=" + url.QueryEscape(name)
	}
	s.headers = map[string]string{"Accept": "application/json"}
	s.firstHit = func(body []byte, in schema.LookupInputs) (*hit, error) {
		var payload struct {
			Result []struct {
				Identifier struct {
					Path string `json:"path"`
				} `json:"orcid-identifier"`
			} `json:"result"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		if len(payload.Result) == 0 {
			return nil, nil
		}
		path := payload.Result[0].Identifier.Path
		profile := ""
		if path != "" {
			profile = "https://orcid.org/" + path
		}
		// search results carry no name, so the searched name stands in
		name := in.Name
		return &hit{id: path, displayName: &name, profileURL: profile}, nil
	}
	return s
}

// Wikidata searches entities
type Wikidata struct{ searchSource }

// NewWikidata creates the wikidata source
func NewWikidata() *Wikidata {
	s := &Wikidata{newSearchSource("wikidata", "Wikidata")}
	s.searchURL = func(name string) string {
		return "https://www.wikidata.org/w/api.php?action=wbsearchentities&format=json&language=en&search=" + url.QueryEscape(name)
	}
	s.firstHit = func(body []byte, _ schema.LookupInputs) (*hit, error) {
		var payload struct {
			Search []struct {
				ID         string  `json:"id"`
				Label      *string `json:"label"`
				ConceptURI string  `json:"concepturi"`
			} `json:"search"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		if len(payload.Search) == 0 {
			return nil, nil
		}
		first := payload.Search[0]
		return &hit{id: first.ID, displayName: first.Label, profileURL: first.ConceptURI}, nil
	}
	return s
}
