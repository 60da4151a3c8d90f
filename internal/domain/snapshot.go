package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FXRates maps a currency pair key such as "USD/JPY" to its rate
type FXRates map[string]decimal.Decimal

// PairKey builds the key used in FXRates for converting from into to
func PairKey(from, to string) string {
	return from + "/" + to
}

// Rate returns the rate for from/to. A currency converts to itself at 1.
func (r FXRates) Rate(from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}
	rate, ok := r[PairKey(from, to)]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

// Breakdown is a running sum keyed by a category label
type Breakdown map[string]decimal.Decimal

// Add accumulates amount under key
func (b Breakdown) Add(key string, amount decimal.Decimal) {
	b[key] = b[key].Add(amount)
}

// Total sums all values of the breakdown
func (b Breakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

// Snapshot is an immutable, date-keyed valuation of the whole portfolio.
// It is created once per date and never updated in place.
type Snapshot struct {
	ID            uuid.UUID
	Date          time.Time
	TotalBase     decimal.Decimal
	TotalUSD      decimal.Decimal
	TotalBTC      decimal.Decimal
	ByAssetClass  Breakdown // base currency
	ByCurrency    Breakdown // native currency, unconverted
	ByAccountType Breakdown // base currency
	FXRates       FXRates
	CreatedAt     time.Time
}
