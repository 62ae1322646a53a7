package russianpost

import (
	"context"
	"fmt"
)

// APIClient defines the interface for Russian Post tariff API operations.
type APIClient interface {
	// CalculateTariff computes the delivery tariff for a destination.
	CalculateTariff(ctx context.Context, req *TariffRequest) (*TariffResponse, error)
}

// ObjectParcelStandard is the mail-category code for a standard parcel.
const ObjectParcelStandard = "2010"

// TariffRequest represents a Russian Post tariff calculation request.
// GET /v2/calculate/tariff — all fields become query parameters.
type TariffRequest struct {
	Object      string // mail category code
	WeightGrams int
	Date        string // YYYYMMDD, local wall clock
	Time        string // HHMMSS, local wall clock
	FromIndex   string // origin postal code
	ToIndex     string // destination postal code
}

// TariffResponse represents the Russian Post tariff response.
// Pay and PayNds (VAT-inclusive) are amounts in kopecks; dividing
// by 100 gives whole rubles.
type TariffResponse struct {
	Pay    int64           `json:"pay"`
	PayNds int64           `json:"paynds"`
	Errors []ResponseError `json:"errors"`
}

// ResponseError is a single error entry in a tariff response.
type ResponseError struct {
	Msg  string `json:"msg"`
	Code int    `json:"code"`
}

// APIError represents a transport-level error from the Russian Post API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d - %s", e.StatusCode, e.Body)
}
