// Package russianpost provides integration with the Russian Post tariff API.
package russianpost

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierName = "russianpost"
	currency    = "RUB"

	dateLayout = "20060102"
	timeLayout = "150405"
)

// Config holds Russian Post configuration.
type Config struct {
	BaseURL string
	UseMock bool
}

// Client is the Russian Post carrier client.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// New creates a new Russian Post client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			Timeout: 30 * time.Second,
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

// NewWithAPIClient creates a new Russian Post client with a custom API client.
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

// Quote resolves a Russian Post delivery rate. Only the destination postal
// code matters for this carrier. Failures never propagate: every error path
// degrades to a non-deliverable result with a reason.
func (c *Client) Quote(ctx context.Context, req *carrier.RateRequest) *carrier.RateResult {
	c.logger.Info("Calculating Russian Post tariff",
		zap.String("destination_postal", req.Destination.PostalCode),
	)

	now := c.now()
	apiReq := &TariffRequest{
		Object:      ObjectParcelStandard,
		WeightGrams: req.Parcel.WeightGrams,
		Date:        now.Format(dateLayout),
		Time:        now.Format(timeLayout),
		FromIndex:   req.Origin.PostalCode,
		ToIndex:     req.Destination.PostalCode,
	}

	resp, err := c.apiClient.CalculateTariff(ctx, apiReq)
	if err != nil {
		c.logger.Error("Russian Post API error", zap.Error(err))
		return carrier.Unavailable(currency, err.Error())
	}

	// paynds is the VAT-inclusive total in kopecks.
	if resp.PayNds > 0 {
		price := math.Round(float64(resp.PayNds) / 100)
		c.logger.Info("Russian Post tariff computed", zap.Float64("price", price))
		return &carrier.RateResult{
			Price:       carrier.Money{Amount: price, Currency: currency},
			Deliverable: true,
		}
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Msg
		}
		return carrier.Unavailable(currency, strings.Join(msgs, "; "))
	}

	return carrier.Unavailable(currency, "price not found in response")
}

var _ carrier.Rater = (*Client)(nil)
