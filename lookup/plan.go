package lookup

import (
	"fmt"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
)

// PlannedRequest is one unit of planned fetch or tool work
type PlannedRequest struct {
	SourceID string `json:"source_id"`
	sources.RequestSpec
}

// BuildPlan enumerates every request for in across the sources of reg that
// accept at least one present input. Sources keep registry order and each
// source's requests keep the order it returned them. Nothing is deduplicated.
//
// A source whose BuildRequests fails or panics aborts planning with an
// ErrContractViolation naming it.
func BuildPlan(in schema.LookupInputs, reg *sources.Registry) ([]PlannedRequest, error) {
	var plan []PlannedRequest
	for _, src := range reg.ForInputs(in.Present()) {
		specs, err := buildRequests(src, in)
		if err != nil {
			return nil, errors.WithHintf(
				errors.Mark(errors.Wrapf(err, "source %q: build requests", src.ID()), errors.ErrContractViolation),
				"disable it with sources.disabled = [%q] in am.toml", src.ID())
		}
		for _, spec := range specs {
			if spec.Transport == "" {
				spec.Transport = sources.TransportHTTP
			}
			plan = append(plan, PlannedRequest{SourceID: src.ID(), RequestSpec: spec})
		}
	}
	return plan, nil
}

func buildRequests(src sources.Source, in schema.LookupInputs) (specs []sources.RequestSpec, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic: %s", fmt.Sprint(r))
		}
	}()
	return src.BuildRequests(in)
}

// PlanSources returns the source id of every planned request, in plan order,
// duplicates included
func PlanSources(plan []PlannedRequest) []string {
	ids := make([]string, 0, len(plan))
	for _, req := range plan {
		ids = append(ids, req.SourceID)
	}
	return ids
}
