package lookup

import (
	"strconv"

	"github.com/teranos/footprint/schema"
)

// Correlate merges the entities of findings that share their first identifier.
//
// The bucket key is the first identifier as "type:value", else the entity id,
// else "finding:<index>" so an anonymous entity never merges. Buckets keep
// first-seen order. A merged entity takes its id and display name from the
// first entity in its bucket and concatenates profile URLs, identifiers and
// evidence in encounter order without deduplication.
//
// Correlate does not modify findings.
func Correlate(findings []schema.Finding) []schema.Entity {
	var order []string
	buckets := make(map[string][]schema.Entity)
	for i, f := range findings {
		key := bucketKey(f.Entity, i)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], f.Entity)
	}

	merged := make([]schema.Entity, 0, len(order))
	for _, key := range order {
		entities := buckets[key]
		primary := entities[0]
		out := schema.Entity{
			EntityID:    primary.EntityID,
			DisplayName: primary.DisplayName,
			ProfileURLs: []string{},
			Identifiers: []schema.Identifier{},
			Evidence:    []schema.Evidence{},
		}
		for _, e := range entities {
			out.ProfileURLs = append(out.ProfileURLs, e.ProfileURLs...)
			out.Identifiers = append(out.Identifiers, e.Identifiers...)
			out.Evidence = append(out.Evidence, e.Evidence...)
		}
		merged = append(merged, out)
	}
	return merged
}

func bucketKey(e schema.Entity, index int) string {
	if len(e.Identifiers) > 0 {
		return e.Identifiers[0].Key()
	}
	if e.EntityID != "" {
		return e.EntityID
	}
	return "finding:" + strconv.Itoa(index)
}
