package cdek

import (
	"context"
	"encoding/json"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnAccessToken         func(ctx context.Context) (string, error)
	OnCalculateTariffList func(ctx context.Context, req *TariffListRequest) (*TariffListResponse, error)
	OnForward             func(ctx context.Context, body []byte) ([]byte, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// AccessToken returns a mock bearer token.
func (m *MockAPIClient) AccessToken(ctx context.Context) (string, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return "", &CredentialError{StatusCode: 401, Body: `{"error":"invalid_client"}`}
	}

	if m.OnAccessToken != nil {
		return m.OnAccessToken(ctx)
	}

	return "mock-cdek-token", nil
}

// CalculateTariffList returns mock tariffs.
func (m *MockAPIClient) CalculateTariffList(ctx context.Context, req *TariffListRequest) (*TariffListResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnCalculateTariffList != nil {
		return m.OnCalculateTariffList(ctx, req)
	}

	return &TariffListResponse{
		TariffCodes: []Tariff{
			{
				TariffCode:  136,
				TariffName:  "Посылка склад-склад",
				DeliverySum: 345,
				PeriodMin:   2,
				PeriodMax:   4,
			},
			{
				TariffCode:  137,
				TariffName:  "Посылка склад-дверь",
				DeliverySum: 475,
				PeriodMin:   2,
				PeriodMax:   4,
			},
			{
				TariffCode:  233,
				TariffName:  "Экономичная посылка склад-дверь",
				DeliverySum: 310,
				PeriodMin:   5,
				PeriodMax:   9,
			},
		},
	}, nil
}

// Forward relays a mock tariff-list response.
func (m *MockAPIClient) Forward(ctx context.Context, body []byte) ([]byte, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnForward != nil {
		return m.OnForward(ctx, body)
	}

	resp, _ := m.CalculateTariffList(ctx, nil)
	return json.Marshal(resp)
}

var _ APIClient = (*MockAPIClient)(nil)
