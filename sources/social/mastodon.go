// Package social holds sources for federated and social platforms whose URL
// scheme cannot be expressed as a single catalog template.
package social

import (
	"strings"

	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
)

// Mastodon checks a fediverse profile. The username must carry its
// instance, as in alice@mastodon.social.
type Mastodon struct {
	*sources.ProfileSource
}

// NewMastodon creates the mastodon source
func NewMastodon() *Mastodon {
	return &Mastodon{ProfileSource: sources.NewProfileSource("mastodon", "Mastodon", sources.CategorySocial, "")}
}

// BuildRequests maps user@instance to https://instance/@user
func (m *Mastodon) BuildRequests(in schema.LookupInputs) ([]sources.RequestSpec, error) {
	user, instance, ok := SplitAccount(in.Username)
	if !ok {
		return nil, nil
	}
	return []sources.RequestSpec{{
		URL:       "https://" + instance + "/@" + user,
		InputType: schema.InputUsername,
		Transport: sources.TransportHTTP,
	}}, nil
}

// SplitAccount splits "user@instance" (an optional leading @ is ignored)
func SplitAccount(account string) (user, instance string, ok bool) {
	account = strings.TrimPrefix(account, "@")
	user, instance, found := strings.Cut(account, "@")
	if !found || user == "" || instance == "" || strings.ContainsAny(instance, "/@ ") {
		return "", "", false
	}
	return user, instance, true
}
