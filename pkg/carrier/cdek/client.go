// Package cdek provides integration with the CDEK delivery API.
package cdek

import (
	"context"
	"errors"
	"time"

	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierName = "cdek"
	currency    = "RUB"

	// dateLayout is the timestamp format the calculator endpoint expects:
	// local time with an explicit UTC-offset suffix and no colon.
	dateLayout = "2006-01-02T15:04:05-0700"
)

// Config holds CDEK configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	UseMock      bool // When true, uses mock API client

	// OnTokenExchange, when set, is invoked once per credential exchange.
	OnTokenExchange func()
}

// Client is the CDEK carrier client.
// It implements the carrier.Rater interface and delegates
// API calls to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// New creates a new CDEK client.
// If cfg.UseMock is true, it uses a mock API client for testing.
// Otherwise, it uses the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:         cfg.BaseURL,
			ClientID:        cfg.ClientID,
			ClientSecret:    cfg.ClientSecret,
			Timeout:         30 * time.Second,
			OnTokenExchange: cfg.OnTokenExchange,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
		now:       time.Now,
	}
}

// NewWithAPIClient creates a new CDEK client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
		now:       time.Now,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// API returns the underlying API client. The server's proxy endpoints use
// it for the raw token and tariff-forwarding operations.
func (c *Client) API() APIClient {
	return c.apiClient
}

// Quote resolves a CDEK delivery rate. Failures never propagate: every
// error path degrades to a non-deliverable result with a reason.
func (c *Client) Quote(ctx context.Context, req *carrier.RateRequest) *carrier.RateResult {
	c.logger.Info("Calculating CDEK tariff",
		zap.String("destination_city", req.Destination.City),
		zap.String("destination_postal", req.Destination.PostalCode),
	)

	apiReq := &TariffListRequest{
		Date:         c.now().Format(dateLayout),
		Type:         TariffTypeDoorToDoor,
		Currency:     CurrencyRUB,
		FromLocation: locationFromAddress(req.Origin, "sender"),
		ToLocation:   locationFromAddress(req.Destination, "recipient"),
		Packages: []Package{
			{
				Weight: req.Parcel.WeightGrams,
				Length: req.Parcel.LengthCM,
				Width:  req.Parcel.WidthCM,
				Height: req.Parcel.HeightCM,
			},
		},
	}

	resp, err := c.apiClient.CalculateTariffList(ctx, apiReq)
	if err != nil {
		var credErr *CredentialError
		if errors.As(err, &credErr) {
			c.logger.Error("CDEK credential exchange failed", zap.Error(err))
			return carrier.Unavailable(currency, "authorization failed")
		}
		c.logger.Error("CDEK API error", zap.Error(err))
		return carrier.Unavailable(currency, err.Error())
	}

	if len(resp.TariffCodes) == 0 {
		return carrier.Unavailable(currency, "no tariff available")
	}

	// Minimum-cost offer; ties keep the earliest-seen tariff.
	best := resp.TariffCodes[0]
	for _, t := range resp.TariffCodes[1:] {
		if t.DeliverySum < best.DeliverySum {
			best = t
		}
	}

	c.logger.Info("CDEK tariff selected",
		zap.Int("tariff_code", best.TariffCode),
		zap.Float64("delivery_sum", best.DeliverySum),
	)

	return &carrier.RateResult{
		Price:       carrier.Money{Amount: best.DeliverySum, Currency: currency},
		Deliverable: true,
	}
}

func locationFromAddress(addr carrier.Address, contragent string) Location {
	return Location{
		PostalCode:     addr.PostalCode,
		CountryCode:    addr.CountryCode,
		City:           addr.City,
		Address:        addr.Street,
		ContragentType: contragent,
	}
}

var _ carrier.Rater = (*Client)(nil)
