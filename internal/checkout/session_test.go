package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/AndreyBarsh/Barshshop/internal/checkout"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
	"github.com/AndreyBarsh/Barshshop/pkg/carrier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestSession(debounce time.Duration, raters ...carrier.Rater) *checkout.Session {
	registry := carrier.NewRegistry()
	for _, r := range raters {
		registry.Register(r)
	}

	return checkout.NewSession(checkout.SessionConfig{
		Registry: registry,
		Logger:   otelzap.New(zap.NewNop()),
		Origin: carrier.Address{
			CountryCode: "RU",
			City:        "Санкт-Петербург",
			Street:      "Индустриальный просп., 19",
			PostalCode:  "195426",
		},
		PostOriginIndex: "195279",
		Parcel:          carrier.Parcel{WeightGrams: 100, LengthCM: 20, WidthCM: 20, HeightCM: 10},
		Debounce:        debounce,
	})
}

func quoteAmount(s *checkout.Session) (float64, bool) {
	q := s.Quote()
	if q == nil {
		return 0, false
	}
	return q.Price.Amount, true
}

func TestSession_DebouncedBurstResolvesOnce(t *testing.T) {
	cdekMock := mock.New("cdek")
	sess := newTestSession(30*time.Millisecond, cdekMock)
	defer sess.Close()

	// A typing burst: every keystroke re-arms the timer, only the settled
	// value reaches the carrier.
	sess.SetCity("М")
	sess.SetCity("Мо")
	sess.SetCity("Москва")
	sess.SetPostalCode("125009")

	require.Eventually(t, func() bool {
		return sess.Quote() != nil
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, cdekMock.Calls())
	amount, ok := quoteAmount(sess)
	require.True(t, ok)
	assert.Equal(t, 350.0, amount)
}

func TestSession_EditAfterSettleResolvesAgain(t *testing.T) {
	cdekMock := mock.New("cdek")
	sess := newTestSession(10*time.Millisecond, cdekMock)
	defer sess.Close()

	sess.SetCity("Москва")
	sess.SetPostalCode("125009")
	require.Eventually(t, func() bool { return cdekMock.Calls() == 1 }, time.Second, 5*time.Millisecond)

	sess.SetPostalCode("101000")
	require.Eventually(t, func() bool { return cdekMock.Calls() == 2 }, time.Second, 5*time.Millisecond)
}

func TestSession_IncompleteDestinationNeverFires(t *testing.T) {
	cdekMock := mock.New("cdek")
	sess := newTestSession(10*time.Millisecond, cdekMock)
	defer sess.Close()

	sess.SetCity("Москва")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, cdekMock.Calls())
	assert.Nil(t, sess.Quote())
	assert.False(t, sess.Calculating())
}

func TestSession_StreetEditDoesNotRequote(t *testing.T) {
	cdekMock := mock.New("cdek")
	sess := newTestSession(10*time.Millisecond, cdekMock)
	defer sess.Close()

	sess.SetCity("Москва")
	sess.SetPostalCode("125009")
	require.Eventually(t, func() bool { return cdekMock.Calls() == 1 }, time.Second, 5*time.Millisecond)

	sess.SetStreet("ул. Тверская, 1")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, cdekMock.Calls())
}

func TestSession_StaleResponseDiscarded(t *testing.T) {
	cdekMock := mock.New("cdek")
	cdekMock.OnQuote = func(ctx context.Context, req *carrier.RateRequest) *carrier.RateResult {
		if req.Destination.City == "Тверь" {
			// Slow response for the first destination.
			time.Sleep(150 * time.Millisecond)
			return &carrier.RateResult{
				Price:       carrier.Money{Amount: 999, Currency: "RUB"},
				Deliverable: true,
			}
		}
		return &carrier.RateResult{
			Price:       carrier.Money{Amount: 100, Currency: "RUB"},
			Deliverable: true,
		}
	}
	sess := newTestSession(15*time.Millisecond, cdekMock)
	defer sess.Close()

	sess.SetCity("Тверь")
	sess.SetPostalCode("170000")

	// Let the slow request fire, then supersede it.
	time.Sleep(50 * time.Millisecond)
	sess.SetCity("Казань")

	require.Eventually(t, func() bool {
		amount, ok := quoteAmount(sess)
		return ok && amount == 100
	}, time.Second, 5*time.Millisecond)

	// The slow response lands after the fast one and must not win.
	time.Sleep(200 * time.Millisecond)
	amount, ok := quoteAmount(sess)
	require.True(t, ok)
	assert.Equal(t, 100.0, amount)
}

func TestSession_MethodSwitchInvalidatesQuote(t *testing.T) {
	cdekMock := mock.New("cdek")
	cdekMock.Result = &carrier.RateResult{
		Price:       carrier.Money{Amount: 300, Currency: "RUB"},
		Deliverable: true,
	}

	postMock := mock.New("russianpost")
	postMock.Result = &carrier.RateResult{
		Price:       carrier.Money{Amount: 150, Currency: "RUB"},
		Deliverable: true,
	}

	sess := newTestSession(10*time.Millisecond, cdekMock, postMock)
	defer sess.Close()

	sess.SetCity("Москва")
	sess.SetPostalCode("125009")
	require.Eventually(t, func() bool {
		amount, ok := quoteAmount(sess)
		return ok && amount == 300
	}, time.Second, 5*time.Millisecond)

	sess.SetMethod(checkout.DeliveryPost)

	// The CDEK price must not linger while the Post quote is pending.
	assert.Nil(t, sess.Quote())

	require.Eventually(t, func() bool {
		amount, ok := quoteAmount(sess)
		return ok && amount == 150
	}, time.Second, 5*time.Millisecond)
}

func TestSession_PostUsesSortingCenterIndex(t *testing.T) {
	var captured *carrier.RateRequest
	postMock := mock.New("russianpost")
	postMock.OnQuote = func(ctx context.Context, req *carrier.RateRequest) *carrier.RateResult {
		captured = req
		return &carrier.RateResult{
			Price:       carrier.Money{Amount: 150, Currency: "RUB"},
			Deliverable: true,
		}
	}

	sess := newTestSession(10*time.Millisecond, postMock)
	defer sess.Close()

	sess.SetMethod(checkout.DeliveryPost)
	sess.SetCity("Москва")
	sess.SetPostalCode("125009")

	require.Eventually(t, func() bool { return sess.Quote() != nil }, time.Second, 5*time.Millisecond)

	require.NotNil(t, captured)
	assert.Equal(t, "195279", captured.Origin.PostalCode)
	assert.Equal(t, "125009", captured.Destination.PostalCode)
}

func TestSession_RecomputeIsSynchronous(t *testing.T) {
	cdekMock := mock.New("cdek")
	sess := newTestSession(time.Hour, cdekMock) // debounce never fires on its own
	defer sess.Close()

	sess.SetCity("Москва")
	sess.SetPostalCode("125009")

	res := sess.Recompute(context.Background())
	require.NotNil(t, res)
	assert.True(t, res.Deliverable)
	assert.Equal(t, 1, cdekMock.Calls())
	assert.Equal(t, res, sess.Quote())
	assert.False(t, sess.Calculating())
}

func TestSession_RecomputeWithIncompleteDestination(t *testing.T) {
	cdekMock := mock.New("cdek")
	sess := newTestSession(time.Hour, cdekMock)
	defer sess.Close()

	sess.SetCity("Москва")

	assert.Nil(t, sess.Recompute(context.Background()))
	assert.Equal(t, 0, cdekMock.Calls())
}

func TestSession_CloseCancelsPendingWork(t *testing.T) {
	cdekMock := mock.New("cdek")
	sess := newTestSession(20*time.Millisecond, cdekMock)

	sess.SetCity("Москва")
	sess.SetPostalCode("125009")
	sess.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, cdekMock.Calls())
	assert.Nil(t, sess.Quote())
}

func TestDeliveryMethod(t *testing.T) {
	assert.True(t, checkout.DeliveryCDEK.Valid())
	assert.True(t, checkout.DeliveryPost.Valid())
	assert.False(t, checkout.DeliveryMethod("courier").Valid())

	assert.Equal(t, "cdek", checkout.DeliveryCDEK.CarrierName())
	assert.Equal(t, "russianpost", checkout.DeliveryPost.CarrierName())

	assert.Equal(t, "CDEK", checkout.DeliveryCDEK.Label())
	assert.Equal(t, "Почта России", checkout.DeliveryPost.Label())
}
