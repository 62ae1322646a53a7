package carrier_test

import (
	"errors"
	"testing"

	"github.com/AndreyBarsh/Barshshop/pkg/carrier"
	"github.com/stretchr/testify/assert"
)

func TestCarrierError_Error(t *testing.T) {
	err := carrier.NewCarrierError("cdek", "INVALID_ADDRESS", "Invalid postal code")
	assert.Equal(t, "cdek error (INVALID_ADDRESS): Invalid postal code", err.Error())
}

func TestCarrierError_ErrorWithCause(t *testing.T) {
	cause := errors.New("network timeout")
	err := carrier.NewCarrierError("cdek", "API_ERROR", "API call failed").WithCause(cause)
	assert.Contains(t, err.Error(), "API call failed")
	assert.Contains(t, err.Error(), "network timeout")
}

func TestCarrierError_Unwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := carrier.NewCarrierError("cdek", "API_ERROR", "API call failed").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestCarrierError_Is(t *testing.T) {
	err1 := carrier.NewCarrierError("cdek", "INVALID_ADDRESS", "Invalid postal code")
	err2 := carrier.NewCarrierError("russianpost", "INVALID_ADDRESS", "Different message")

	// Same code should match
	assert.True(t, errors.Is(err1, err2))
}

func TestCarrierError_IsNot(t *testing.T) {
	err1 := carrier.NewCarrierError("cdek", "INVALID_ADDRESS", "Invalid postal code")
	err2 := carrier.NewCarrierError("cdek", "DIFFERENT_CODE", "Different error")

	// Different codes should not match
	assert.False(t, errors.Is(err1, err2))
}

func TestCarrierError_WithStatusCode(t *testing.T) {
	err := carrier.NewCarrierError("cdek", "AUTH_ERROR", "Unauthorized").WithStatusCode(401)
	assert.Equal(t, 401, err.StatusCode)
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrAuthenticationFailed", carrier.ErrAuthenticationFailed},
		{"ErrNoTariff", carrier.ErrNoTariff},
		{"ErrInvalidAddress", carrier.ErrInvalidAddress},
		{"ErrCarrierNotFound", carrier.ErrCarrierNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestUnavailable(t *testing.T) {
	res := carrier.Unavailable("RUB", "no tariff available")
	assert.False(t, res.Deliverable)
	assert.Equal(t, "no tariff available", res.Reason)
	assert.Equal(t, "RUB", res.Price.Currency)
	assert.Zero(t, res.Price.Amount)
}
