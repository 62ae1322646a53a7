package russianpost

import (
	"context"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCalculateTariff func(ctx context.Context, req *TariffRequest) (*TariffResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// CalculateTariff returns a mock tariff.
func (m *MockAPIClient) CalculateTariff(ctx context.Context, req *TariffRequest) (*TariffResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Body: "Simulated API error"}
	}

	if m.OnCalculateTariff != nil {
		return m.OnCalculateTariff(ctx, req)
	}

	return &TariffResponse{
		Pay:    12500,
		PayNds: 15000,
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
