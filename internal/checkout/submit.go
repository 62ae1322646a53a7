package checkout

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/AndreyBarsh/Barshshop/internal/notify"
	"github.com/AndreyBarsh/Barshshop/internal/telemetry"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// postalCodePattern is the Russian 6-digit postal index.
var postalCodePattern = regexp.MustCompile(`^\d{6}$`)

// orderPlacedDisplay is how long a session stays in the transient
// order-confirmation state after a successful submission.
const orderPlacedDisplay = 2 * time.Second

// CustomerForm is the customer identity entered at checkout.
type CustomerForm struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderSummary is the composed order handed to the notification dispatcher.
// It is only constructible from a deliverable quote.
type OrderSummary struct {
	Number       string         `json:"number"`
	Customer     CustomerForm   `json:"customer"`
	Street       string         `json:"street"`
	City         string         `json:"city"`
	PostalCode   string         `json:"postalCode"`
	Method       DeliveryMethod `json:"deliveryMethod"`
	Items        []OrderItem    `json:"items"`
	Subtotal     float64        `json:"subtotal"`
	DeliveryCost float64        `json:"deliveryCost"`
	Total        float64        `json:"total"`
}

// BlockedError reports why a submission was refused. No order is dispatched
// when submission is blocked.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "submission blocked: " + e.Reason
}

// Checkout is the order submission gate.
type Checkout struct {
	notifier notify.Notifier
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// NewCheckout creates a new submission gate.
func NewCheckout(notifier notify.Notifier, logger *otelzap.Logger, metrics *telemetry.Metrics) *Checkout {
	return &Checkout{
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
	}
}

// Submit validates the session, re-resolves the delivery quote once more,
// composes the order summary and dispatches the notification.
//
// The synchronous re-quote defends against stale results left behind by
// delayed debounced edits: the order total always reflects a quote computed
// at submit time. A failed notification dispatch is logged but does not fail
// the submission.
func (c *Checkout) Submit(ctx context.Context, s *Session, form CustomerForm) (*OrderSummary, error) {
	dest := s.Destination()

	if missing := missingFields(form, dest.City, dest.Street, dest.PostalCode); len(missing) > 0 {
		return nil, c.blocked("missing required fields: " + strings.Join(missing, ", "))
	}
	if !postalCodePattern.MatchString(dest.PostalCode) {
		return nil, c.blocked("postal code must be 6 digits")
	}
	if s.Cart.Empty() {
		return nil, c.blocked("cart is empty")
	}
	if s.Calculating() {
		return nil, c.blocked("delivery cost calculation in progress")
	}

	last := s.Quote()
	if last == nil || !last.Deliverable {
		reason := "delivery cost not calculated"
		if last != nil && last.Reason != "" {
			reason = last.Reason
		}
		return nil, c.blocked(reason)
	}

	// Fresh quote at submit time; the displayed one may be stale.
	fresh := s.Recompute(ctx)
	if fresh == nil || !fresh.Deliverable {
		reason := "delivery cost not calculated"
		if fresh != nil && fresh.Reason != "" {
			reason = fresh.Reason
		}
		return nil, c.blocked(reason)
	}

	items := s.Cart.Items()
	subtotal := s.Cart.Subtotal()
	deliveryCost := fresh.Price.Amount

	summary := &OrderSummary{
		Number:       uuid.New().String(),
		Customer:     form,
		Street:       dest.Street,
		City:         dest.City,
		PostalCode:   dest.PostalCode,
		Method:       s.Method(),
		Items:        make([]OrderItem, len(items)),
		Subtotal:     subtotal,
		DeliveryCost: deliveryCost,
		Total:        subtotal + deliveryCost,
	}
	for i, item := range items {
		summary.Items[i] = OrderItem{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
	}

	if err := c.notifier.Send(ctx, templateParams(summary)); err != nil {
		// Known trade-off: the shopper still sees a confirmation even when
		// the operator notification could not be delivered.
		c.logger.Error("Order notification dispatch failed",
			zap.String("order", summary.Number),
			zap.Error(err),
		)
		if c.metrics != nil {
			c.metrics.NotifyFailures.Inc()
		}
	}

	s.Cart.Clear()
	s.markOrderPlaced(orderPlacedDisplay)

	if c.metrics != nil {
		c.metrics.RecordOrder("placed")
	}
	c.logger.Info("Order placed",
		zap.String("order", summary.Number),
		zap.String("method", string(summary.Method)),
		zap.Float64("total", summary.Total),
	)

	return summary, nil
}

func (c *Checkout) blocked(reason string) error {
	if c.metrics != nil {
		c.metrics.RecordOrder("blocked")
	}
	return &BlockedError{Reason: reason}
}

func missingFields(form CustomerForm, city, street, postalCode string) []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("firstName", form.FirstName)
	check("lastName", form.LastName)
	check("phone", form.Phone)
	check("email", form.Email)
	check("address", street)
	check("city", city)
	check("postalCode", postalCode)
	return missing
}

// templateParams maps the summary into the notification template slots.
func templateParams(o *OrderSummary) map[string]string {
	lines := make([]string, len(o.Items))
	for i, item := range o.Items {
		lines[i] = fmt.Sprintf("«%s» — %d шт.", item.Name, item.Quantity)
	}

	return map[string]string{
		"firstName":      o.Customer.FirstName,
		"lastName":       o.Customer.LastName,
		"phone":          o.Customer.Phone,
		"email":          o.Customer.Email,
		"address":        o.Street,
		"city":           o.City,
		"postalCode":     o.PostalCode,
		"deliveryMethod": o.Method.Label(),
		"orderItems":     strings.Join(lines, ", "),
		"subtotal":       formatRubles(o.Subtotal),
		"deliveryCost":   formatRubles(o.DeliveryCost),
		"total":          formatRubles(o.Total),
	}
}

func formatRubles(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " ₽"
}
