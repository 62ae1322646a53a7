package russianpost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient.
// The tariff endpoint is public and requires no credentials.
type HTTPAPIClient struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CalculateTariff computes the delivery tariff via the Russian Post API.
// GET /v2/calculate/tariff
func (c *HTTPAPIClient) CalculateTariff(ctx context.Context, req *TariffRequest) (*TariffResponse, error) {
	query := url.Values{}
	query.Set("json", "")
	query.Set("object", req.Object)
	query.Set("weight", strconv.Itoa(req.WeightGrams))
	query.Set("date", req.Date)
	query.Set("time", req.Time)
	query.Set("from", req.FromIndex)
	query.Set("to", req.ToIndex)

	endpoint := c.baseURL + "/v2/calculate/tariff?" + query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "barshshop/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tariff response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result TariffResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode tariff response: %w", err)
	}

	return &result, nil
}

var _ APIClient = (*HTTPAPIClient)(nil)
