package cdek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenSource
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL         string
	ClientID        string
	ClientSecret    string
	Timeout         time.Duration
	OnTokenExchange func()
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
		tokens: NewTokenSource(TokenSourceConfig{
			TokenURL:     cfg.BaseURL + "/oauth/token",
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Timeout:      timeout,
			OnExchange:   cfg.OnTokenExchange,
		}),
	}
}

// AccessToken returns a valid bearer token from the cache.
func (c *HTTPAPIClient) AccessToken(ctx context.Context) (string, error) {
	return c.tokens.Token(ctx)
}

// CalculateTariffList fetches available tariffs from the CDEK API.
// POST /calculator/tarifflist
func (c *HTTPAPIClient) CalculateTariffList(ctx context.Context, req *TariffListRequest) (*TariffListResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tariff request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/calculator/tarifflist", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result TariffListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode tariff response: %w", err)
	}

	return &result, nil
}

// Forward relays a raw JSON body to the tariff-list endpoint and returns
// the raw response. CDEK reports its own errors as JSON, so upstream error
// bodies are relayed to the caller as-is; a body that is not valid JSON
// becomes an APIError instead.
func (c *HTTPAPIClient) Forward(ctx context.Context, body []byte) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/calculator/tarifflist", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tariff response: %w", err)
	}

	if !json.Valid(data) {
		return nil, &APIError{
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: string(data),
		}
	}

	return data, nil
}

// doRequest performs an HTTP request with the bearer credential attached.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "barshshop/1.0")

	return c.httpClient.Do(req)
}

// parseError extracts error information from an HTTP response.
func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		return &apiErr
	}

	return &APIError{
		Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Message: string(body),
	}
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
