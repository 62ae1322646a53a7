package main

import (
	"context"

	"github.com/AndreyBarsh/Barshshop/internal/catalog"
	"github.com/AndreyBarsh/Barshshop/internal/checkout"
	"github.com/AndreyBarsh/Barshshop/internal/config"
	"github.com/AndreyBarsh/Barshshop/internal/notify"
	"github.com/AndreyBarsh/Barshshop/internal/telemetry"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier/cdek"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier/russianpost"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return otel.Tracer(cfg.ServiceName), func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

func initMetrics() *telemetry.Metrics {
	return telemetry.NewMetrics()
}

func initCatalog() *catalog.Catalog {
	return catalog.Default()
}

// initCarrierRegistry registers the enabled carriers. The CDEK API client is
// returned separately so the server can expose the token and calculate proxy
// endpoints on top of it.
func initCarrierRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer, metrics *telemetry.Metrics) (*carrier.Registry, cdek.APIClient) {
	registry := carrier.NewRegistry()

	var cdekAPI cdek.APIClient

	if cfg.CDEKEnabled {
		c := cdek.New(cdek.Config{
			ClientID:        cfg.CDEKClientID,
			ClientSecret:    cfg.CDEKClientSecret,
			BaseURL:         cfg.CDEKBaseURL,
			UseMock:         cfg.CDEKUseMock,
			OnTokenExchange: metrics.TokenExchanges.Inc,
		}, logger, tracer)
		registry.Register(c)
		cdekAPI = c.API()
	}

	if cfg.PostEnabled {
		rp := russianpost.New(russianpost.Config{
			BaseURL: cfg.PostBaseURL,
			UseMock: cfg.PostUseMock,
		}, logger, tracer)
		registry.Register(rp)
	}

	return registry, cdekAPI
}

func initNotifier(cfg *config.Config) notify.Notifier {
	if cfg.EmailJSUseMock {
		return &notify.Mock{}
	}
	return notify.NewEmailJS(notify.EmailJSConfig{
		BaseURL:    cfg.EmailJSBaseURL,
		ServiceID:  cfg.EmailJSServiceID,
		TemplateID: cfg.EmailJSTemplateID,
		PublicKey:  cfg.EmailJSPublicKey,
	})
}

func sessionConfig(cfg *config.Config, registry *carrier.Registry, logger *otelzap.Logger, metrics *telemetry.Metrics) checkout.SessionConfig {
	return checkout.SessionConfig{
		Registry: registry,
		Logger:   logger,
		Metrics:  metrics,
		Origin: carrier.Address{
			CountryCode: cfg.OriginCountry,
			City:        cfg.OriginCity,
			Street:      cfg.OriginStreet,
			PostalCode:  cfg.OriginPostalCode,
		},
		PostOriginIndex: cfg.PostOriginIndex,
		Parcel: carrier.Parcel{
			WeightGrams: cfg.ParcelWeightGrams,
			LengthCM:    cfg.ParcelLengthCM,
			WidthCM:     cfg.ParcelWidthCM,
			HeightCM:    cfg.ParcelHeightCM,
		},
		Debounce: cfg.QuoteDebounce,
	}
}
