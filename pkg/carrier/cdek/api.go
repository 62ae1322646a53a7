package cdek

import (
	"context"
	"fmt"
)

// APIClient defines the interface for CDEK API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// AccessToken returns a valid bearer token for the CDEK API,
	// refreshing it through the client-credentials exchange when needed.
	AccessToken(ctx context.Context) (string, error)

	// CalculateTariffList fetches the list of available tariffs for a shipment.
	CalculateTariffList(ctx context.Context, req *TariffListRequest) (*TariffListResponse, error)

	// Forward relays a raw JSON tariff-list request body to the CDEK API
	// using the cached token and returns the raw JSON response body.
	Forward(ctx context.Context, body []byte) ([]byte, error)
}

// ============================================================================
// API Request/Response Types (match CDEK REST API v2 structure)
// ============================================================================

// Tariff type and currency selectors used by the calculator endpoint.
const (
	// TariffTypeDoorToDoor requests door-to-door delivery tariffs.
	TariffTypeDoorToDoor = 2
	// CurrencyRUB selects Russian rubles in calculator responses.
	CurrencyRUB = 1
)

// TariffListRequest represents a CDEK tariff-list calculation request.
// POST /calculator/tarifflist endpoint
type TariffListRequest struct {
	Date         string    `json:"date"` // local time with UTC-offset suffix, e.g. 2024-05-01T12:00:00+0300
	Type         int       `json:"type"`
	Currency     int       `json:"currency"`
	FromLocation Location  `json:"from_location"`
	ToLocation   Location  `json:"to_location"`
	Packages     []Package `json:"packages"`
}

// Location represents the origin or destination of a shipment.
type Location struct {
	PostalCode     string `json:"postal_code"`
	CountryCode    string `json:"country_code"` // ISO 3166-1 alpha-2 code
	City           string `json:"city"`
	Address        string `json:"address,omitempty"`
	ContragentType string `json:"contragent_type"` // "sender" or "recipient"
}

// Package represents a single package. Dimensions are in centimeters,
// weight in grams.
type Package struct {
	Weight int `json:"weight"`
	Length int `json:"length"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TariffListResponse represents the CDEK tariff-list response.
type TariffListResponse struct {
	TariffCodes []Tariff `json:"tariff_codes"`
}

// Tariff represents a single tariff offer.
type Tariff struct {
	TariffCode        int     `json:"tariff_code"`
	TariffName        string  `json:"tariff_name"`
	TariffDescription string  `json:"tariff_description,omitempty"`
	DeliveryMode      int     `json:"delivery_mode"`
	DeliverySum       float64 `json:"delivery_sum"`
	PeriodMin         int     `json:"period_min"`
	PeriodMax         int     `json:"period_max"`
}

// tokenResponse is the body returned by the OAuth token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// APIError represents an error from the CDEK API.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// CredentialError indicates the token endpoint rejected the
// client-credentials exchange or returned a malformed body.
type CredentialError struct {
	StatusCode int
	Body       string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("cdek credential exchange failed (HTTP %d): %s", e.StatusCode, e.Body)
}
