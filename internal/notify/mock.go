package notify

import (
	"context"
	"sync"
)

// Mock is an in-memory Notifier for testing. It records every send.
type Mock struct {
	// Err, when set, is returned from Send.
	Err error

	mu    sync.Mutex
	sends []map[string]string
}

// NewMock creates a new mock notifier.
func NewMock() *Mock {
	return &Mock{}
}

// Send records the notification.
func (m *Mock) Send(ctx context.Context, params map[string]string) error {
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	m.sends = append(m.sends, copied)
	return nil
}

// Sends returns all recorded notifications.
func (m *Mock) Sends() []map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]string, len(m.sends))
	copy(out, m.sends)
	return out
}

var _ Notifier = (*Mock)(nil)
