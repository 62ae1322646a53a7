// Package carrier provides an abstraction layer for delivery-rate carriers.
package carrier

import (
	"context"
)

// Rater defines the interface that all rate-quoting carriers must implement.
//
// Quote never returns an error: every failure at the carrier boundary is
// converted into a RateResult with Deliverable=false and a human-readable
// Reason. Callers branch on the result instead of handling errors.
type Rater interface {
	// Name returns the carrier identifier (e.g., "cdek", "russianpost").
	Name() string

	// Quote resolves a delivery rate for a destination.
	Quote(ctx context.Context, req *RateRequest) *RateResult
}
