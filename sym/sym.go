// Package sym defines the glyphs footprint uses in CLI headers and log fields.
// They are stable across commands, reports and documentation.
package sym

// Command glyphs.
const (
	AM     = "≡" // am: configuration and system settings
	Lookup = "⨳" // lookup: pull public evidence from external sources
	Plan   = "⟶" // plan: requests a lookup would issue
	Source = "⌬" // source: origin of a finding
	Run    = "✦" // run: one timestamped lookup execution
	Names  = "⋈" // names: permutation and dork expansion
)

// System glyphs.
const (
	Throttle = "꩜" // rate limiting and politeness
	DB       = "⊔" // run index storage
)

// CommandToGlyph maps command names to their glyph.
var CommandToGlyph = map[string]string{
	"am":      AM,
	"lookup":  Lookup,
	"plan":    Plan,
	"sources": Source,
	"runs":    Run,
	"names":   Names,
}

// GlyphFor returns the glyph for a command, or "" if it has none.
func GlyphFor(command string) string {
	return CommandToGlyph[command]
}
