// Package sources defines the contract every lookup source implements and the
// registry that holds the configured set.
//
// A source turns normalized inputs into request specs and turns each fetch
// result into findings. Tool-transport sources additionally implement
// Executor and run an external scanner instead of an HTTP fetch.
package sources

import (
	"context"
	"time"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/fetch"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/storage"
	"github.com/teranos/footprint/tools"
)

// Transport selects how a planned request is carried out
type Transport string

const (
	TransportHTTP Transport = "http"
	TransportTool Transport = "tool"
)

// Categories used by the built-in sources
const (
	CategoryDeveloper   = "developer"
	CategorySocial      = "social"
	CategoryBlog        = "blog"
	CategoryDirectories = "directories"
	CategoryTools       = "tools"
)

// RequestSpec is one request a source wants made.
// URL may be a synthetic tool:// URI when Transport is TransportTool.
type RequestSpec struct {
	URL       string            `json:"url"`
	InputType schema.InputType  `json:"input_type"`
	Headers   map[string]string `json:"headers,omitempty"`
	Transport Transport         `json:"transport"`
}

// RawRef points at a persisted raw artifact and its content hash
type RawRef struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Source is a named capability for one external platform, API or tool
type Source interface {
	ID() string
	Name() string
	Category() string
	SupportedInputs() []schema.InputType

	// BuildRequests returns the requests for in, in the order they should run.
	// An error here is a contract violation and aborts planning.
	BuildRequests(in schema.LookupInputs) ([]RequestSpec, error)

	// Parse turns one HTTP result into findings. refs is empty when the
	// result carried no content.
	Parse(result fetch.FetchResult, in schema.LookupInputs, refs []RawRef) ([]schema.Finding, error)
}

// ExecRequest carries everything a tool source needs to run its scanner
type ExecRequest struct {
	SourceID string
	Request  RequestSpec
	Inputs   schema.LookupInputs
	Paths    storage.RunPaths
	Config   *am.Config
	Runner   tools.Runner
}

// Executor is implemented by tool-transport sources
type Executor interface {
	Execute(ctx context.Context, req ExecRequest) ([]schema.Finding, error)
}

// CanExecute returns src as an Executor when it offers tool execution
func CanExecute(src Source) (Executor, bool) {
	exec, ok := src.(Executor)
	return exec, ok
}

// Info carries the static identity of a source. Embed it to satisfy the
// identity half of Source.
type Info struct {
	SourceID       string             `yaml:"id" json:"id"`
	SourceName     string             `yaml:"name" json:"name"`
	SourceCategory string             `yaml:"category" json:"category"`
	Inputs         []schema.InputType `yaml:"inputs,omitempty" json:"supported_inputs"`
}

func (i Info) ID() string                          { return i.SourceID }
func (i Info) Name() string                        { return i.SourceName }
func (i Info) Category() string                    { return i.SourceCategory }
func (i Info) SupportedInputs() []schema.InputType { return i.Inputs }

// Supports reports whether the source accepts input type t
func Supports(src Source, t schema.InputType) bool {
	for _, s := range src.SupportedInputs() {
		if s == t {
			return true
		}
	}
	return false
}

// timeNow is replaced in tests
var timeNow = time.Now

// FetchedAt returns the timestamp recorded on evidence created now
func FetchedAt() string {
	return schema.Timestamp(timeNow())
}

// EvidenceFor builds one Evidence per raw artifact reference
func EvidenceFor(sourceID, requestURL, parserID string, refs []RawRef, excerpt *string) []schema.Evidence {
	fetchedAt := FetchedAt()
	evidence := make([]schema.Evidence, 0, len(refs))
	for _, ref := range refs {
		evidence = append(evidence, schema.Evidence{
			SourceID:     sourceID,
			RequestURL:   requestURL,
			RawPath:      ref.Path,
			RawHash:      ref.Hash,
			ParserID:     parserID,
			MatchExcerpt: excerpt,
			FetchedAt:    fetchedAt,
		})
	}
	return evidence
}

// ToolURL builds the synthetic URI of a tool-transport request
func ToolURL(sourceID, username string) string {
	return "tool://" + sourceID + "/" + username
}
