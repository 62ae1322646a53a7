// Package mock provides a mock carrier implementation for testing.
package mock

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
)

// Client is a mock carrier for testing.
type Client struct {
	name string

	// Result, when set, is returned from Quote instead of the default.
	Result *carrier.RateResult

	// OnQuote, when set, overrides Quote entirely.
	OnQuote func(ctx context.Context, req *carrier.RateRequest) *carrier.RateResult

	// Latency delays every Quote call.
	Latency time.Duration

	calls atomic.Int64
}

// New creates a new mock carrier.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Calls returns how many times Quote was invoked.
func (c *Client) Calls() int {
	return int(c.calls.Load())
}

// Quote returns a mock rate result.
func (c *Client) Quote(ctx context.Context, req *carrier.RateRequest) *carrier.RateResult {
	c.calls.Add(1)

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
		}
	}

	if c.OnQuote != nil {
		return c.OnQuote(ctx, req)
	}
	if c.Result != nil {
		res := *c.Result
		return &res
	}

	return &carrier.RateResult{
		Price:       carrier.Money{Amount: 350, Currency: "RUB"},
		Deliverable: true,
	}
}

var _ carrier.Rater = (*Client)(nil)
