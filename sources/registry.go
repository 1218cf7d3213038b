package sources

import (
	"sort"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
)

// Registry holds the configured sources in registration order.
// Registration order is plan order, so it is part of the observable contract.
type Registry struct {
	sources []Source
	byID    map[string]Source
}

// NewRegistry creates a registry holding srcs in the given order
func NewRegistry(srcs ...Source) (*Registry, error) {
	r := &Registry{byID: make(map[string]Source, len(srcs))}
	for _, src := range srcs {
		if err := r.Register(src); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends src. Returns an error if its id is empty or already registered.
func (r *Registry) Register(src Source) error {
	id := src.ID()
	if id == "" {
		return errors.Wrap(errors.ErrInvalidInput, "source has empty id")
	}
	if _, exists := r.byID[id]; exists {
		return errors.Wrapf(errors.ErrInvalidInput, "source already registered: %s", id)
	}
	r.sources = append(r.sources, src)
	r.byID[id] = src
	return nil
}

// Get retrieves a source by id
func (r *Registry) Get(id string) (Source, bool) {
	src, ok := r.byID[id]
	return src, ok
}

// MustGet retrieves a source by id, returning ErrUnknownSource if absent
func (r *Registry) MustGet(id string) (Source, error) {
	src, ok := r.byID[id]
	if !ok {
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrUnknownSource, "%q", id),
			"run 'footprint sources list' to see available sources")
	}
	return src, nil
}

// Sources returns the sources in registration order
func (r *Registry) Sources() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// List returns the sources sorted by id
func (r *Registry) List() []Source {
	out := r.Sources()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of registered sources
func (r *Registry) Len() int {
	return len(r.sources)
}

// ForInputs returns, in registration order, every source accepting at least
// one of the present input types
func (r *Registry) ForInputs(present map[schema.InputType]bool) []Source {
	var out []Source
	for _, src := range r.sources {
		for _, t := range src.SupportedInputs() {
			if present[t] {
				out = append(out, src)
				break
			}
		}
	}
	return out
}

// Filtered returns a registry restricted to enabled (all when empty), minus disabled.
// Order is preserved.
func (r *Registry) Filtered(enabled, disabled []string) *Registry {
	on := toSet(enabled)
	off := toSet(disabled)

	out := &Registry{byID: make(map[string]Source, len(r.sources))}
	for _, src := range r.sources {
		id := src.ID()
		if len(on) > 0 && !on[id] {
			continue
		}
		if off[id] {
			continue
		}
		out.sources = append(out.sources, src)
		out.byID[id] = src
	}
	return out
}

// Unknown returns the ids in ids that are not registered
func (r *Registry) Unknown(ids []string) []string {
	var unknown []string
	for _, id := range ids {
		if _, ok := r.byID[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
