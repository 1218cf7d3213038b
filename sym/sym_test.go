package sym

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlyphFor(t *testing.T) {
	assert.Equal(t, Lookup, GlyphFor("lookup"))
	assert.Equal(t, AM, GlyphFor("am"))
	assert.Empty(t, GlyphFor("version"))
}

func TestGlyphsAreDistinct(t *testing.T) {
	seen := map[string]string{}
	for cmd, g := range CommandToGlyph {
		if other, ok := seen[g]; ok {
			t.Fatalf("glyph %s shared by %s and %s", g, cmd, other)
		}
		seen[g] = cmd
	}
}
