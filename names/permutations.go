// Package names derives username candidates and search-engine queries from a
// person's name.
package names

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLimit caps Permutations when the caller passes a limit below one
const DefaultLimit = 100

var separators = []string{"", ".", "_", "-"}

// NormalizeToken folds a name part to lower-case ASCII letters and digits.
// Accents are stripped via NFKD; anything else that is not [a-z0-9] is dropped.
func NormalizeToken(value string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), value)
	if err != nil {
		folded = value
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Permutations returns likely usernames for first and last, most likely
// first, without duplicates and at most limit long. birthYear of zero means
// unknown; otherwise candidates of four or more characters also get the
// four- and two-digit year appended.
func Permutations(first, last string, birthYear, limit int) []string {
	if limit < 1 {
		limit = DefaultLimit
	}
	f := NormalizeToken(first)
	l := NormalizeToken(last)
	if f == "" || l == "" {
		return []string{}
	}
	fi, li := f[:1], l[:1]
	f2, l2 := prefix(f, 2), prefix(l, 2)

	var base []string
	for _, sep := range separators {
		base = append(base,
			f+sep+l,
			l+sep+f,
			fi+sep+l,
			f+sep+li,
			f2+sep+l,
			f+sep+l2,
		)
	}
	base = append(base, f, l, f+l, l+f)

	var years []string
	if birthYear > 0 {
		years = []string{fmt.Sprint(birthYear), fmt.Sprintf("%02d", birthYear%100)}
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, cand := range base {
		variants := []string{cand}
		if len(cand) >= 4 {
			for _, y := range years {
				variants = append(variants, cand+y)
			}
		}
		for _, v := range variants {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
