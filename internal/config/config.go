package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CDEK
	CDEKClientID     string `envconfig:"CDEK_CLIENT_ID"`
	CDEKClientSecret string `envconfig:"CDEK_CLIENT_SECRET"`
	CDEKBaseURL      string `envconfig:"CDEK_BASE_URL" default:"https://api.cdek.ru/v2"`
	CDEKEnabled      bool   `envconfig:"CDEK_ENABLED" default:"true"`
	CDEKUseMock      bool   `envconfig:"CDEK_USE_MOCK" default:"false"`

	// Russian Post
	PostBaseURL string `envconfig:"POST_BASE_URL" default:"https://tariff.pochta.ru"`
	PostEnabled bool   `envconfig:"POST_ENABLED" default:"true"`
	PostUseMock bool   `envconfig:"POST_USE_MOCK" default:"false"`

	// Warehouse origin. Defaults are the shop's St. Petersburg warehouse.
	OriginCountry    string `envconfig:"ORIGIN_COUNTRY" default:"RU"`
	OriginCity       string `envconfig:"ORIGIN_CITY" default:"Санкт-Петербург"`
	OriginStreet     string `envconfig:"ORIGIN_STREET" default:"Индустриальный просп., 19"`
	OriginPostalCode string `envconfig:"ORIGIN_POSTAL_CODE" default:"195426"`
	PostOriginIndex  string `envconfig:"POST_ORIGIN_INDEX" default:"195279"`

	// Standard parcel. Every order ships in the same envelope-sized package.
	ParcelWeightGrams int `envconfig:"PARCEL_WEIGHT_GRAMS" default:"100"`
	ParcelLengthCM    int `envconfig:"PARCEL_LENGTH_CM" default:"20"`
	ParcelWidthCM     int `envconfig:"PARCEL_WIDTH_CM" default:"20"`
	ParcelHeightCM    int `envconfig:"PARCEL_HEIGHT_CM" default:"10"`

	// Checkout
	QuoteDebounce time.Duration `envconfig:"QUOTE_DEBOUNCE" default:"500ms"`

	// EmailJS order notifications
	EmailJSBaseURL    string `envconfig:"EMAILJS_BASE_URL" default:"https://api.emailjs.com"`
	EmailJSServiceID  string `envconfig:"EMAILJS_SERVICE_ID"`
	EmailJSTemplateID string `envconfig:"EMAILJS_TEMPLATE_ID"`
	EmailJSPublicKey  string `envconfig:"EMAILJS_PUBLIC_KEY"`
	EmailJSUseMock    bool   `envconfig:"EMAILJS_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"barshshop"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("cdek.enabled", c.CDEKEnabled),
		attribute.Bool("russianpost.enabled", c.PostEnabled),
	}
}
