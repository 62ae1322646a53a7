package carrier

// Address represents a postal address used for rate calculation.
type Address struct {
	CountryCode string // ISO 3166-1 alpha-2, e.g., "RU"
	City        string
	Street      string
	PostalCode  string
}

// Parcel represents a single package to be shipped.
// Dimensions are in centimeters, weight in grams.
type Parcel struct {
	WeightGrams int
	LengthCM    int
	WidthCM     int
	HeightCM    int
}

// Money represents a monetary amount.
type Money struct {
	Amount   float64
	Currency string
}

// RateRequest is the request for resolving a delivery rate.
//
// Origin and Parcel are fixed per deployment (warehouse address and a
// standard envelope-sized package); only the destination varies per user.
type RateRequest struct {
	Origin      Address
	Destination Address
	Parcel      Parcel
}

// RateResult is the normalized outcome of a rate resolution.
//
// Deliverable=true implies Reason is empty and Price holds the cheapest
// available tariff. A zero price with Deliverable=true is a valid quote.
type RateResult struct {
	Price       Money
	Deliverable bool
	Reason      string
}

// Unavailable builds a non-deliverable result with the given reason.
func Unavailable(currency, reason string) *RateResult {
	return &RateResult{
		Price:       Money{Amount: 0, Currency: currency},
		Deliverable: false,
		Reason:      reason,
	}
}
