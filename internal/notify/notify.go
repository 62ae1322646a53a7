// Package notify dispatches order notifications through an external
// template-based email service.
package notify

import (
	"context"
)

// Notifier sends a templated notification with a flat field mapping.
// Implementations own transport and authentication; callers only supply
// template variables.
type Notifier interface {
	Send(ctx context.Context, params map[string]string) error
}
