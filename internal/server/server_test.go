package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AndreyBarsh/Barshshop/internal/catalog"
	"github.com/AndreyBarsh/Barshshop/internal/checkout"
	"github.com/AndreyBarsh/Barshshop/internal/notify"
	"github.com/AndreyBarsh/Barshshop/internal/server"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier/cdek"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	logger := otelzap.New(zap.NewNop())

	registry := carrier.NewRegistry()
	cdekMock := mock.New("cdek")
	cdekMock.Result = &carrier.RateResult{
		Price:       carrier.Money{Amount: 300, Currency: "RUB"},
		Deliverable: true,
	}
	registry.Register(cdekMock)

	srv := server.New(server.Config{
		Port: 8080,
		Session: checkout.SessionConfig{
			Registry: registry,
			Logger:   logger,
			Origin: carrier.Address{
				CountryCode: "RU",
				City:        "Санкт-Петербург",
				PostalCode:  "195426",
			},
			PostOriginIndex: "195279",
			Parcel:          carrier.Parcel{WeightGrams: 100, LengthCM: 20, WidthCM: 20, HeightCM: 10},
			Debounce:        10 * time.Millisecond,
		},
	}, registry, catalog.Default(), cdek.NewMockAPIClient(), notify.NewMock(), logger, nil)

	return srv.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestServer_Health(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Products(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var products []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.NotEmpty(t, products)
	assert.NotEmpty(t, products[0]["name"])
}

func TestServer_DeliveryToken(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/delivery/token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "mock-cdek-token", body["access_token"])
}

func TestServer_DeliveryCalculate(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/delivery/calculate",
		`{"type":2,"currency":1,"to_location":{"postal_code":"125009"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["tariff_codes"])
}

func TestServer_DeliveryQuotes(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/delivery/quotes",
		`{"city":"Москва","postalCode":"125009"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Contains(t, body, "cdek")
}

func TestServer_DeliveryQuotes_MissingDestination(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/delivery/quotes", `{"city":"Москва"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func createSession(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/checkout/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	id, ok := body["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	return id
}

func waitForQuote(t *testing.T, handler http.Handler, id string) {
	t.Helper()

	require.Eventually(t, func() bool {
		rec := doJSON(t, handler, http.MethodGet, "/api/checkout/sessions/"+id+"/quote", "")
		if rec.Code != http.StatusOK {
			return false
		}
		body := decodeBody(t, rec)
		return body["deliverable"] == true && body["calculating"] == false
	}, time.Second, 10*time.Millisecond)
}

func TestServer_SessionLifecycle(t *testing.T) {
	handler := newTestHandler(t)
	id := createSession(t, handler)

	// Add an item.
	rec := doJSON(t, handler, http.MethodPost, "/api/checkout/sessions/"+id+"/items",
		`{"productId":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 500.0, body["subtotal"])

	// Enter the destination; the quote resolves after the debounce.
	rec = doJSON(t, handler, http.MethodPatch, "/api/checkout/sessions/"+id+"/address",
		`{"city":"Москва","street":"ул. Тверская, 1","postalCode":"125009"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	waitForQuote(t, handler, id)

	rec = doJSON(t, handler, http.MethodGet, "/api/checkout/sessions/"+id+"/quote", "")
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decodeBody(t, rec)
	assert.Equal(t, 300.0, quote["price"])
	assert.Equal(t, "RUB", quote["currency"])

	// Submit the order.
	rec = doJSON(t, handler, http.MethodPost, "/api/checkout/sessions/"+id+"/submit",
		`{"firstName":"Андрей","lastName":"Барш","phone":"+79000000000","email":"andrey@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decodeBody(t, rec)
	assert.Equal(t, 500.0, summary["subtotal"])
	assert.Equal(t, 300.0, summary["deliveryCost"])
	assert.Equal(t, 800.0, summary["total"])

	// The cart is cleared and the confirmation state is visible.
	rec = doJSON(t, handler, http.MethodPost, "/api/checkout/sessions/"+id+"/items",
		`{"productId":1,"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Empty(t, body["items"])
	assert.Equal(t, true, body["orderPlaced"])
}

func TestServer_SubmitBlocked(t *testing.T) {
	handler := newTestHandler(t)
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/checkout/sessions/"+id+"/submit",
		`{"firstName":"Андрей"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "missing required fields")
}

func TestServer_UnknownDeliveryMethod(t *testing.T) {
	handler := newTestHandler(t)
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodPatch, "/api/checkout/sessions/"+id+"/address",
		`{"deliveryMethod":"drone"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SessionNotFound(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/checkout/sessions/nope/quote", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DeleteSession(t *testing.T) {
	handler := newTestHandler(t)
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodDelete, "/api/checkout/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/checkout/sessions/"+id+"/quote", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
