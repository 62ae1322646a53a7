package carrier

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered rate carriers.
type Registry struct {
	raters map[string]Rater
	mu     sync.RWMutex
}

// NewRegistry creates a new carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		raters: make(map[string]Rater),
	}
}

// Register adds a carrier to the registry.
func (r *Registry) Register(c Rater) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raters[c.Name()] = c
}

// Get returns a carrier by name.
func (r *Registry) Get(name string) (Rater, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.raters[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered carriers.
func (r *Registry) All() []Rater {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Rater, 0, len(r.raters))
	for _, c := range r.raters {
		result = append(result, c)
	}
	return result
}

// Names returns the names of all registered carriers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.raters))
	for name := range r.raters {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.raters)
}

// QuoteAll resolves rates from all registered carriers in parallel.
// Individual carriers report their own failures inside the RateResult,
// so the returned map always has one entry per registered carrier.
func (r *Registry) QuoteAll(ctx context.Context, req *RateRequest) map[string]*RateResult {
	raters := r.All()
	results := make(map[string]*RateResult, len(raters))
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for _, c := range raters {
		c := c // capture loop variable
		g.Go(func() error {
			res := c.Quote(ctx, req)
			mu.Lock()
			results[c.Name()] = res
			mu.Unlock()
			return nil
		})
	}

	g.Wait()
	return results
}
