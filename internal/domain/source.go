package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceSource fetches a live quote for an asset from an external service.
// Implementations return an error wrapping ErrPriceUnavailable when no quote exists.
type PriceSource interface {
	FetchQuote(ctx context.Context, asset *Asset) (*Quote, error)
}

// RateSource fetches live exchange rates from an external service.
// Implementations return an error wrapping ErrRateUnavailable when no rate exists.
type RateSource interface {
	// FetchRate returns how many units of to one unit of from buys
	FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error)

	// FetchBTCRate returns the BTC price in the given currency
	FetchBTCRate(ctx context.Context, currency string) (decimal.Decimal, error)
}
