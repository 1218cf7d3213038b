package names

import (
	"sort"
	"strings"
)

// Site is a search-engine target for dork queries
type Site struct {
	Key        string
	Domain     string
	NamePrefix string // prefix of the exact-name query
}

// Sites lists the supported dork targets by key
var Sites = map[string]Site{
	"linkedin":  {Key: "linkedin", Domain: "linkedin.com", NamePrefix: "site:linkedin.com/in"},
	"instagram": {Key: "instagram", Domain: "instagram.com", NamePrefix: "site:instagram.com"},
}

// SiteKeys returns the supported site keys, sorted
func SiteKeys() []string {
	keys := make([]string, 0, len(Sites))
	for k := range Sites {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DorkQueries builds search queries for fullName on each known site in sites.
// Per site: the exact-name query, that query narrowed by a keyword OR-group,
// a domain query over the permutation OR-group and, for instagram, an inurl
// query for the top permutation. Unknown site keys are ignored and the result
// is deduplicated in order.
func DorkQueries(fullName string, sites, keywords, topPermutations []string) []string {
	var out []string
	for _, key := range sites {
		site, ok := Sites[key]
		if !ok {
			continue
		}
		base := site.NamePrefix + ` "` + fullName + `"`
		out = append(out, base)

		if group := orGroup(keywords); group != "" {
			out = append(out, base+" "+group)
		}
		if group := orGroup(topPermutations); group != "" {
			out = append(out, "site:"+site.Domain+" "+group)
			if key == "instagram" {
				out = append(out, "site:"+site.Domain+" inurl:"+topPermutations[0])
			}
		}
	}

	seen := make(map[string]bool, len(out))
	deduped := []string{}
	for _, q := range out {
		if seen[q] {
			continue
		}
		seen[q] = true
		deduped = append(deduped, q)
	}
	return deduped
}

// orGroup renders ("a" OR "b"), skipping blank terms
func orGroup(terms []string) string {
	var quoted []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			quoted = append(quoted, `"`+t+`"`)
		}
	}
	if len(quoted) == 0 {
		return ""
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}

// SplitKeywords splits a comma-separated keyword list, dropping blanks
func SplitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
