package cdek

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// refreshMargin is subtracted from the token lifetime so a token is never
// handed out right before it expires mid-request.
const refreshMargin = 60 * time.Second

// TokenSource is a process-lifetime cache for the CDEK bearer credential.
// A token is served from memory while valid; expired or missing tokens
// trigger a client-credentials exchange. Concurrent refreshes coalesce
// into a single in-flight exchange shared by all waiters.
type TokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	now          func() time.Time
	onExchange   func()

	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// TokenSourceConfig holds configuration for the token source.
type TokenSourceConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Now          func() time.Time // defaults to time.Now
	OnExchange   func()           // invoked once per credential exchange
}

// NewTokenSource creates a new token source.
func NewTokenSource(cfg TokenSourceConfig) *TokenSource {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TokenSource{
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		now:          now,
		onExchange:   cfg.OnExchange,
	}
}

// Token returns a valid bearer token, performing the credential exchange
// only when the cached token is missing or about to expire.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.token != "" && s.now().Before(s.expiresAt) {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("token", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *TokenSource) refresh(ctx context.Context) (string, error) {
	// A waiter that queued behind a completed refresh finds a fresh token here.
	s.mu.Lock()
	if s.token != "" && s.now().Before(s.expiresAt) {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	if s.onExchange != nil {
		s.onExchange()
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &CredentialError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", &CredentialError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if tok.AccessToken == "" {
		return "", &CredentialError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	s.mu.Lock()
	s.token = tok.AccessToken
	s.expiresAt = s.now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshMargin)
	s.mu.Unlock()

	return tok.AccessToken, nil
}
