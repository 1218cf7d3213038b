package lookup

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/teranos/footprint/schema"
)

// Emitter receives pipeline progress. Lanes run concurrently, so
// implementations must be safe for concurrent use.
//
// Implementations include:
// - CLIEmitter: pterm terminal output
// - JSONEmitter: one JSON event per line
// - NopEmitter: discards everything
type Emitter interface {
	EmitStage(stage, message string)
	EmitRequest(req PlannedRequest, outcome Outcome)
	EmitWarning(w schema.Warning)
	EmitComplete(summary Summary)
}

// Outcome describes how one planned request ended
type Outcome struct {
	StatusCode int           `json:"status_code,omitempty"`
	Skipped    bool          `json:"skipped,omitempty"`
	Error      string        `json:"error,omitempty"`
	Findings   int           `json:"findings"`
	Duration   time.Duration `json:"duration_ns"`
}

// Summary is reported once when the run ends
type Summary struct {
	RunID     string `json:"run_id"`
	RunDir    string `json:"run_dir"`
	Requests  int    `json:"requests"`
	Findings  int    `json:"findings"`
	Entities  int    `json:"entities"`
	Warnings  int    `json:"warnings"`
	Cancelled bool   `json:"cancelled"`
}

// NopEmitter discards progress
type NopEmitter struct{}

func (NopEmitter) EmitStage(string, string) {}
func (NopEmitter) EmitRequest(PlannedRequest, Outcome) {}
func (NopEmitter) EmitWarning(schema.Warning) {}
func (NopEmitter) EmitComplete(Summary) {}

// CLIEmitter prints progress to the terminal using pterm
type CLIEmitter struct {
	mu        sync.Mutex
	verbosity int
}

// NewCLIEmitter creates a CLI progress emitter for terminal output
func NewCLIEmitter(verbosity int) *CLIEmitter {
	return &CLIEmitter{verbosity: verbosity}
}

// EmitStage prints a stage announcement
func (e *CLIEmitter) EmitStage(stage, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pterm.Printf("🔄 %s: %s\n", pterm.LightCyan(stage), message)
}

// EmitRequest prints one finished request. Only shown at -v and above.
func (e *CLIEmitter) EmitRequest(req PlannedRequest, o Outcome) {
	if e.verbosity < 1 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case o.Skipped:
		pterm.Printf("⏭  %s %s %s\n", pterm.LightCyan(req.SourceID), req.URL, pterm.Gray("robots.txt"))
	case o.Error != "":
		pterm.Printf("✗  %s %s %s\n", pterm.LightCyan(req.SourceID), req.URL, pterm.Red(o.Error))
	default:
		pterm.Printf("✓  %s %s %s\n", pterm.LightCyan(req.SourceID), req.URL,
			pterm.Green(fmt.Sprintf("%d finding(s)", o.Findings)))
	}
}

// EmitWarning prints an isolated per-source failure
func (e *CLIEmitter) EmitWarning(w schema.Warning) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pterm.Warning.Printf("%s %s: %s\n", w.SourceID, w.Stage, w.Message)
}

// EmitComplete prints the completion summary
func (e *CLIEmitter) EmitComplete(s Summary) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.Cancelled {
		pterm.Warning.Printf("Run %s cancelled, partial results kept\n", s.RunID)
	} else {
		pterm.Success.Printf("Run %s complete\n", s.RunID)
	}
	if e.verbosity >= 1 {
		pterm.Printf("  requests: %d\n  findings: %d\n  entities: %d\n  warnings: %d\n",
			s.Requests, s.Findings, s.Entities, s.Warnings)
	}
}

// ProgressEvent is one line of JSONEmitter output
type ProgressEvent struct {
	Type      string      `json:"type"` // "stage", "request", "warning", "complete"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// JSONEmitter writes one JSON event per line to w
type JSONEmitter struct {
	mu      sync.Mutex
	encoder *json.Encoder
	timeNow func() time.Time
}

// NewJSONEmitter creates a JSON progress emitter writing to w
func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{encoder: json.NewEncoder(w), timeNow: time.Now}
}

func (e *JSONEmitter) emit(eventType string, data interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// progress is best-effort; a broken pipe must not fail the run
	_ = e.encoder.Encode(ProgressEvent{Type: eventType, Timestamp: e.timeNow().UTC(), Data: data})
}

func (e *JSONEmitter) EmitStage(stage, message string) {
	e.emit("stage", map[string]string{"stage": stage, "message": message})
}

func (e *JSONEmitter) EmitRequest(req PlannedRequest, o Outcome) {
	e.emit("request", struct {
		PlannedRequest
		Outcome Outcome `json:"outcome"`
	}{req, o})
}

func (e *JSONEmitter) EmitWarning(w schema.Warning) { e.emit("warning", w) }

func (e *JSONEmitter) EmitComplete(s Summary) { e.emit("complete", s) }
