package proxy

import (
	"fmt"
	"iter"
	"slices"

	"github.com/nao1215/trendscan/internal/model"
)

// Rotator owns an ordered, finite list of egress endpoints.
// It never randomizes, repeats or mutates the list.
type Rotator struct {
	endpoints []model.ProxyEndpoint
}

// NewRotator creates a Rotator over endpoints in the given order.
func NewRotator(endpoints ...model.ProxyEndpoint) *Rotator {
	return &Rotator{endpoints: slices.Clone(endpoints)}
}

// NewRotatorFromStrings parses each entry with model.ParseProxyEndpoint.
func NewRotatorFromStrings(entries []string) (*Rotator, error) {
	eps := make([]model.ProxyEndpoint, 0, len(entries))
	for i, s := range entries {
		ep, err := model.ParseProxyEndpoint(s)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidProxyAddress, i, err)
		}
		eps = append(eps, ep)
	}
	return &Rotator{endpoints: eps}, nil
}

// With returns a new Rotator with extra endpoints appended after the current ones.
func (r *Rotator) With(extra ...model.ProxyEndpoint) *Rotator {
	return &Rotator{endpoints: append(slices.Clone(r.endpoints), extra...)}
}

// Endpoints returns a lazy sequence of the endpoints in configured order.
// Every call starts from the first endpoint again, so one sequence serves one run.
func (r *Rotator) Endpoints() iter.Seq[model.ProxyEndpoint] {
	return func(yield func(model.ProxyEndpoint) bool) {
		for _, ep := range r.endpoints {
			if !yield(ep) {
				return
			}
		}
	}
}

// Len returns the number of configured endpoints.
func (r *Rotator) Len() int {
	return len(r.endpoints)
}

// List returns a copy of the endpoints.
func (r *Rotator) List() []model.ProxyEndpoint {
	return slices.Clone(r.endpoints)
}
