// Package schema holds the data model shared by sources, the lookup pipeline
// and the report renderers: seed inputs, findings, entities and their evidence.
package schema

import "time"

// TimestampFormat is the UTC layout used for every timestamp footprint writes
const TimestampFormat = "2006-01-02T15:04:05Z"

// Timestamp formats t in UTC using TimestampFormat
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// Confidence is a coarse trust tier attached to a finding
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Finding types emitted by the built-in sources
const (
	FindingProfile   = "profile"
	FindingDirectory = "directory"
)

// Evidence ties a claim to the raw material it was read from.
// Evidence values are never mutated after construction.
type Evidence struct {
	SourceID     string  `json:"source_id"`
	RequestURL   string  `json:"request_url"`
	RawPath      string  `json:"raw_path"`
	RawHash      string  `json:"raw_hash"`
	ParserID     string  `json:"parser_id"`
	MatchExcerpt *string `json:"match_excerpt"`
	FetchedAt    string  `json:"fetched_at"`
}

// Identifier is a typed key such as username:alice, with the evidence supporting it
type Identifier struct {
	Type     string     `json:"type"`
	Value    string     `json:"value"`
	Evidence []Evidence `json:"evidence"`
}

// Key formats the identifier as type:value, the correlation bucket key
func (i Identifier) Key() string {
	return i.Type + ":" + i.Value
}

// Entity is a provisional identity record
type Entity struct {
	EntityID    string       `json:"entity_id"`
	DisplayName *string      `json:"display_name"`
	ProfileURLs []string     `json:"profile_urls"`
	Identifiers []Identifier `json:"identifiers"`
	Evidence    []Evidence   `json:"evidence"`
}

// Label returns the display name, falling back to the entity id
func (e Entity) Label() string {
	if e.DisplayName != nil && *e.DisplayName != "" {
		return *e.DisplayName
	}
	return e.EntityID
}

// Artifact is non-identity material such as a search hit
type Artifact struct {
	URL      string     `json:"url"`
	Title    *string    `json:"title"`
	Snippet  *string    `json:"snippet"`
	Evidence []Evidence `json:"evidence"`
}

// Finding is one source's contribution to a lookup
type Finding struct {
	SourceID   string     `json:"source_id"`
	Type       string     `json:"type"`
	Entity     Entity     `json:"entity"`
	Artifacts  []Artifact `json:"artifacts"`
	Confidence Confidence `json:"confidence"`
}

// Warning records a per-source failure that was isolated so the run could continue
type Warning struct {
	SourceID string `json:"source_id"`
	URL      string `json:"url,omitempty"`
	Stage    string `json:"stage"` // parse, execute, fetch
	Message  string `json:"message"`
}

// RunManifest records one pipeline execution
type RunManifest struct {
	RunID      string                 `json:"run_id"`
	Inputs     map[string]*string     `json:"inputs"`
	Sources    []string               `json:"sources"` // plan order, one entry per planned request
	StartedAt  string                 `json:"started_at"`
	FinishedAt *string                `json:"finished_at"`
	Cancelled  bool                   `json:"cancelled"`
	Warnings   []Warning              `json:"warnings"`
	Config     map[string]interface{} `json:"config"`
}

// Finish stamps the manifest with its finish time
func (m *RunManifest) Finish(at time.Time) {
	ts := Timestamp(at)
	m.FinishedAt = &ts
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
