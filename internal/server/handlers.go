package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/AndreyBarsh/Barshshop/internal/checkout"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
	"go.uber.org/zap"
)

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.All())
}

// handleDeliveryToken exchanges the server-held CDEK credentials for a
// bearer token, so the credentials never reach the browser.
func (s *Server) handleDeliveryToken(w http.ResponseWriter, r *http.Request) {
	if s.cdekAPI == nil {
		s.writeError(w, http.StatusServiceUnavailable, "cdek is not enabled")
		return
	}

	token, err := s.cdekAPI.AccessToken(r.Context())
	if err != nil {
		s.logger.Error("CDEK token exchange failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

// handleDeliveryCalculate relays a raw tariff-list request to the CDEK API
// and returns the upstream response body verbatim.
func (s *Server) handleDeliveryCalculate(w http.ResponseWriter, r *http.Request) {
	if s.cdekAPI == nil {
		s.writeError(w, http.StatusServiceUnavailable, "cdek is not enabled")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	resp, err := s.cdekAPI.Forward(r.Context(), body)
	if err != nil {
		s.logger.Error("CDEK calculate relay failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(resp)
}

type quotesRequest struct {
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
}

// handleDeliveryQuotes fans a destination out to every registered carrier
// and returns all results side by side.
func (s *Server) handleDeliveryQuotes(w http.ResponseWriter, r *http.Request) {
	var req quotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.City == "" || req.PostalCode == "" {
		s.writeError(w, http.StatusBadRequest, "city and postalCode are required")
		return
	}

	results := s.registry.QuoteAll(r.Context(), &carrier.RateRequest{
		Origin: s.session.Origin,
		Destination: carrier.Address{
			CountryCode: s.session.Origin.CountryCode,
			City:        req.City,
			Street:      req.Street,
			PostalCode:  req.PostalCode,
		},
		Parcel: s.session.Parcel,
	})

	s.writeJSON(w, http.StatusOK, results)
}

type sessionResponse struct {
	ID          string              `json:"id"`
	Method      string              `json:"deliveryMethod"`
	Items       []checkout.CartItem `json:"items"`
	Subtotal    float64             `json:"subtotal"`
	Quote       *carrier.RateResult `json:"quote,omitempty"`
	Calculating bool                `json:"calculating"`
	OrderPlaced bool                `json:"orderPlaced"`
}

func (s *Server) sessionResponse(sess *checkout.Session) sessionResponse {
	return sessionResponse{
		ID:          sess.ID,
		Method:      string(sess.Method()),
		Items:       sess.Cart.Items(),
		Subtotal:    sess.Cart.Subtotal(),
		Quote:       sess.Quote(),
		Calculating: sess.Calculating(),
		OrderPlaced: sess.OrderPlaced(),
	}
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Create(s.session)
	s.logger.Info("Checkout session created", zap.String("session", sess.ID))
	s.writeJSON(w, http.StatusCreated, s.sessionResponse(sess))
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	s.store.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// lookupSession resolves the {id} path segment, writing a 404 on a miss.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) *checkout.Session {
	sess := s.store.Get(r.PathValue("id"))
	if sess == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
	}
	return sess
}

type addressRequest struct {
	City       *string `json:"city"`
	Street     *string `json:"street"`
	PostalCode *string `json:"postalCode"`
	Method     *string `json:"deliveryMethod"`
}

func (s *Server) handleSessionAddress(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Method != nil {
		method := checkout.DeliveryMethod(*req.Method)
		if !method.Valid() {
			s.writeError(w, http.StatusBadRequest, "unknown delivery method: "+*req.Method)
			return
		}
		sess.SetMethod(method)
	}
	if req.Street != nil {
		sess.SetStreet(*req.Street)
	}
	if req.City != nil {
		sess.SetCity(*req.City)
	}
	if req.PostalCode != nil {
		sess.SetPostalCode(*req.PostalCode)
	}

	s.writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

type quoteResponse struct {
	Calculating bool     `json:"calculating"`
	Deliverable bool     `json:"deliverable"`
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Message     string   `json:"message,omitempty"`
}

func (s *Server) handleSessionQuote(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}

	resp := quoteResponse{Calculating: sess.Calculating()}
	if res := sess.Quote(); res != nil {
		resp.Deliverable = res.Deliverable
		if res.Deliverable {
			price := res.Price.Amount
			resp.Price = &price
			resp.Currency = res.Price.Currency
		} else {
			resp.Message = res.Reason
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type itemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

func (s *Server) handleSessionItems(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	product, err := s.catalog.Get(req.ProductID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	sess.Cart.Set(checkout.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  req.Quantity,
	})

	s.writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) handleSessionSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}

	var form checkout.CustomerForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	summary, err := s.checkout.Submit(r.Context(), sess, form)
	if err != nil {
		var blocked *checkout.BlockedError
		if errors.As(err, &blocked) {
			s.writeError(w, http.StatusUnprocessableEntity, blocked.Reason)
			return
		}
		s.logger.Error("Order submission failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "order submission failed")
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}
