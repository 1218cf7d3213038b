// Package report renders the findings of one run as console text, JSON and Markdown.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
)

// Data is everything a renderer needs from one run
type Data struct {
	RunID    string
	Sources  []string // plan order, duplicates kept
	Findings []schema.Finding
	Warnings []schema.Warning
}

// Console renders the terminal summary. When styled is false the output is
// plain text, suitable for files and tests.
func Console(d Data, styled bool) string {
	heading := func(s string) string { return s }
	source := func(s string) string { return s }
	warn := func(s string) string { return s }
	if styled {
		heading = func(s string) string { return pterm.Bold.Sprint(s) }
		source = func(s string) string { return pterm.LightCyan(s) }
		warn = func(s string) string { return pterm.Yellow(s) }
	}

	lines := []string{
		heading("OpenFootprint run " + d.RunID),
		"Sources: " + strings.Join(d.Sources, ", "),
		heading("Findings:"),
	}
	for _, f := range d.Findings {
		lines = append(lines, fmt.Sprintf("- %s: %s", source(f.SourceID), f.Entity.Label()))
	}
	if len(d.Warnings) > 0 {
		lines = append(lines, heading("Warnings:"))
		for _, w := range d.Warnings {
			lines = append(lines, fmt.Sprintf("- %s: %s", source(w.SourceID), warn(warningText(w))))
		}
	}
	return strings.Join(lines, "\n")
}

// JSON renders the machine-readable report with indented, key-sorted objects
func JSON(d Data) (string, error) {
	findings := d.Findings
	if findings == nil {
		findings = []schema.Finding{}
	}
	warnings := d.Warnings
	if warnings == nil {
		warnings = []schema.Warning{}
	}
	sources := d.Sources
	if sources == nil {
		sources = []string{}
	}
	payload := struct {
		RunID    string           `json:"run_id"`
		Sources  []string         `json:"sources"`
		Findings []schema.Finding `json:"findings"`
		Warnings []schema.Warning `json:"warnings"`
	}{d.RunID, sources, findings, warnings}

	// Round-trip through a generic value so every object, nested ones
	// included, is emitted with sorted keys.
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "encode report")
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", errors.Wrap(err, "normalize report")
	}
	out, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "indent report")
	}
	return string(out), nil
}

// Markdown renders the human-readable report file
func Markdown(d Data) string {
	lines := []string{"# OpenFootprint Report", "", "Run: " + d.RunID, "", "## Sources", ""}
	for _, s := range d.Sources {
		lines = append(lines, "- "+s)
	}
	lines = append(lines, "", "## Findings")
	for _, f := range d.Findings {
		lines = append(lines, fmt.Sprintf("- %s: %s", f.SourceID, f.Entity.Label()))
	}
	if len(d.Warnings) > 0 {
		lines = append(lines, "", "## Warnings")
		for _, w := range d.Warnings {
			lines = append(lines, fmt.Sprintf("- %s: %s", w.SourceID, warningText(w)))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func warningText(w schema.Warning) string {
	text := w.Stage + ": " + w.Message
	if w.URL != "" {
		text += " (" + w.URL + ")"
	}
	return text
}
