// Package checkout implements the delivery-quote orchestration and order
// submission flow for one shopper.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/AndreyBarsh/Barshshop/internal/telemetry"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DeliveryMethod selects which carrier resolves the quote.
type DeliveryMethod string

const (
	DeliveryCDEK DeliveryMethod = "cdek"
	DeliveryPost DeliveryMethod = "post"
)

// Valid reports whether the method is one of the supported carriers.
func (m DeliveryMethod) Valid() bool {
	return m == DeliveryCDEK || m == DeliveryPost
}

// CarrierName maps the method to the registered carrier name.
func (m DeliveryMethod) CarrierName() string {
	if m == DeliveryPost {
		return "russianpost"
	}
	return "cdek"
}

// Label is the human-readable carrier name used in order notifications.
func (m DeliveryMethod) Label() string {
	if m == DeliveryPost {
		return "Почта России"
	}
	return "CDEK"
}

// SessionConfig holds the collaborators and fixed constants a session needs.
type SessionConfig struct {
	Registry *carrier.Registry
	Logger   *otelzap.Logger
	Metrics  *telemetry.Metrics // optional

	// Origin is the warehouse address used for CDEK requests.
	Origin carrier.Address
	// PostOriginIndex is the origin postal code for Russian Post requests,
	// which uses a different sorting-center index than the warehouse.
	PostOriginIndex string
	// Parcel is the fixed package every order ships in.
	Parcel carrier.Parcel
	// Debounce is the quiet period after an address edit before a quote
	// request fires.
	Debounce time.Duration
}

// Session tracks one shopper's checkout state: the destination being typed,
// the chosen delivery method, the cart, and the latest resolved quote.
//
// Address edits do not call a carrier directly. Each edit (re)arms a debounce
// timer; when the timer fires, the request is tagged with a generation
// number and resolved in the background. A response whose generation is no
// longer the latest is discarded, so a slow stale response can never
// overwrite the quote of a newer request.
type Session struct {
	ID   string
	Cart *Cart

	cfg SessionConfig

	mu          sync.Mutex
	city        string
	street      string
	postalCode  string
	method      DeliveryMethod
	timer       *time.Timer
	gen         uint64
	inFlight    int
	result      *carrier.RateResult
	closed      bool
	orderPlaced bool
}

// NewSession creates a session with an empty cart and CDEK preselected.
func NewSession(cfg SessionConfig) *Session {
	return &Session{
		ID:     uuid.New().String(),
		Cart:   NewCart(),
		cfg:    cfg,
		method: DeliveryCDEK,
	}
}

// SetCity updates the destination city and schedules a recompute.
func (s *Session) SetCity(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.city = city
	s.scheduleLocked()
}

// SetStreet updates the street address. Street edits do not affect the
// quote, so no recompute is scheduled.
func (s *Session) SetStreet(street string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.street = street
}

// SetPostalCode updates the destination postal code and schedules a recompute.
func (s *Session) SetPostalCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postalCode = code
	s.scheduleLocked()
}

// SetMethod switches the delivery method. The previous quote is invalidated
// immediately and a recompute is scheduled.
func (s *Session) SetMethod(method DeliveryMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if method == s.method {
		return
	}
	s.method = method
	s.result = nil
	s.scheduleLocked()
}

// Method returns the selected delivery method.
func (s *Session) Method() DeliveryMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// Destination returns the destination address entered so far.
func (s *Session) Destination() carrier.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return carrier.Address{
		CountryCode: s.cfg.Origin.CountryCode,
		City:        s.city,
		Street:      s.street,
		PostalCode:  s.postalCode,
	}
}

// Quote returns the latest resolved quote, or nil when none is available.
func (s *Session) Quote() *carrier.RateResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Calculating reports whether a quote resolution is in flight.
func (s *Session) Calculating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0 || s.timer != nil
}

// OrderPlaced reports whether the session is in the transient
// order-confirmation state.
func (s *Session) OrderPlaced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderPlaced
}

// markOrderPlaced enters the transient order-confirmation state and leaves
// it again after the display window.
func (s *Session) markOrderPlaced(d time.Duration) {
	s.mu.Lock()
	s.orderPlaced = true
	s.mu.Unlock()

	time.AfterFunc(d, func() {
		s.mu.Lock()
		s.orderPlaced = false
		s.mu.Unlock()
	})
}

// Close cancels any pending debounce timer and invalidates in-flight work.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// Bump the generation so any in-flight response is discarded.
	s.gen++
}

// Recompute resolves a quote synchronously, superseding any pending or
// in-flight computation, and stores the result. Returns nil when the
// destination is incomplete.
func (s *Session) Recompute(ctx context.Context) *carrier.RateResult {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.closed || s.city == "" || s.postalCode == "" {
		s.result = nil
		s.mu.Unlock()
		return nil
	}
	s.gen++
	gen := s.gen
	name := s.method.CarrierName()
	req := s.rateRequestLocked()
	s.inFlight++
	s.mu.Unlock()

	return s.resolve(ctx, gen, name, req)
}

// scheduleLocked (re)arms the debounce timer. Must be called with s.mu held.
func (s *Session) scheduleLocked() {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.Debounce, s.fire)
}

// fire runs when the debounce window elapses with no further edits.
func (s *Session) fire() {
	s.mu.Lock()
	s.timer = nil
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.city == "" || s.postalCode == "" {
		s.result = nil
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	name := s.method.CarrierName()
	req := s.rateRequestLocked()
	s.inFlight++
	s.mu.Unlock()

	go s.resolve(context.Background(), gen, name, req)
}

func (s *Session) rateRequestLocked() *carrier.RateRequest {
	origin := s.cfg.Origin
	if s.method == DeliveryPost {
		origin.PostalCode = s.cfg.PostOriginIndex
	}
	return &carrier.RateRequest{
		Origin: origin,
		Destination: carrier.Address{
			CountryCode: s.cfg.Origin.CountryCode,
			City:        s.city,
			Street:      s.street,
			PostalCode:  s.postalCode,
		},
		Parcel: s.cfg.Parcel,
	}
}

// resolve performs one quote resolution and stores the result unless a
// newer generation has been issued in the meantime.
func (s *Session) resolve(ctx context.Context, gen uint64, name string, req *carrier.RateRequest) *carrier.RateResult {
	start := time.Now()

	var res *carrier.RateResult
	rater, err := s.cfg.Registry.Get(name)
	if err != nil {
		res = carrier.Unavailable("RUB", err.Error())
	} else {
		res = rater.Quote(ctx, req)
	}

	if s.cfg.Metrics != nil {
		outcome := "ok"
		if !res.Deliverable {
			outcome = "unavailable"
		}
		s.cfg.Metrics.RecordQuote(name, outcome, time.Since(start).Seconds())
	}

	s.mu.Lock()
	s.inFlight--
	stale := gen != s.gen || s.closed
	if !stale {
		s.result = res
	}
	s.mu.Unlock()

	if stale {
		s.cfg.Logger.Debug("Discarding stale quote response",
			zap.String("carrier", name),
			zap.Uint64("generation", gen),
		)
	}

	return res
}
