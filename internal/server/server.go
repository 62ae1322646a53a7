// Package server exposes the storefront's HTTP API: the product catalog,
// the carrier proxy endpoints and the checkout session lifecycle.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AndreyBarsh/Barshshop/internal/catalog"
	"github.com/AndreyBarsh/Barshshop/internal/checkout"
	"github.com/AndreyBarsh/Barshshop/internal/notify"
	"github.com/AndreyBarsh/Barshshop/internal/telemetry"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier/cdek"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the storefront service.
type Server struct {
	port     int
	registry *carrier.Registry
	catalog  *catalog.Catalog
	cdekAPI  cdek.APIClient // nil when CDEK is disabled
	store    *checkout.Store
	checkout *checkout.Checkout
	session  checkout.SessionConfig
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port    int
	Session checkout.SessionConfig
}

// New creates a new server instance.
func New(cfg Config, registry *carrier.Registry, cat *catalog.Catalog, cdekAPI cdek.APIClient, notifier notify.Notifier, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:     cfg.Port,
		registry: registry,
		catalog:  cat,
		cdekAPI:  cdekAPI,
		store:    checkout.NewStore(),
		checkout: checkout.NewCheckout(notifier, logger, metrics),
		session:  cfg.Session,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Catalog
	mux.HandleFunc("GET /api/products", s.handleProducts)

	// CDEK proxy
	mux.HandleFunc("GET /api/delivery/token", s.handleDeliveryToken)
	mux.HandleFunc("POST /api/delivery/calculate", s.handleDeliveryCalculate)

	// Carrier comparison
	mux.HandleFunc("POST /api/delivery/quotes", s.handleDeliveryQuotes)

	// Checkout sessions
	mux.HandleFunc("POST /api/checkout/sessions", s.handleSessionCreate)
	mux.HandleFunc("DELETE /api/checkout/sessions/{id}", s.handleSessionDelete)
	mux.HandleFunc("PATCH /api/checkout/sessions/{id}/address", s.handleSessionAddress)
	mux.HandleFunc("GET /api/checkout/sessions/{id}/quote", s.handleSessionQuote)
	mux.HandleFunc("POST /api/checkout/sessions/{id}/items", s.handleSessionItems)
	mux.HandleFunc("POST /api/checkout/sessions/{id}/submit", s.handleSessionSubmit)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
