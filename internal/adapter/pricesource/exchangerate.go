package pricesource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

var _ domain.RateSource = (*ExchangeRateHost)(nil)

// BTCRateFetcher prices bitcoin in a fiat currency
type BTCRateFetcher interface {
	FetchBTCRate(ctx context.Context, currency string) (decimal.Decimal, error)
}

// ExchangeRateHost reads FX rates from the exchangerate.host convert endpoint
// and delegates the BTC rate to BTC.
type ExchangeRateHost struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	BTC     BTCRateFetcher
}

// NewExchangeRateHost creates an exchangerate.host rate source without a BTC fetcher
func NewExchangeRateHost(cfg Config) *ExchangeRateHost {
	return &ExchangeRateHost{
		BaseURL: "https://api.exchangerate.host",
		APIKey:  cfg.ExchangeRateAPIKey,
		Client:  cfg.client(),
	}
}

// FetchRate returns how many units of to one unit of from buys
func (e *ExchangeRateHost) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	params := url.Values{"from": {from}, "to": {to}, "amount": {"1"}}
	if e.APIKey != "" {
		params.Set("access_key", e.APIKey)
	}

	doc, err := getJSON(ctx, e.Client, e.BaseURL+"/convert", params)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s/%s: %v", domain.ErrRateUnavailable, from, to, err)
	}

	success, _ := lookup("$.success", doc)
	if ok, _ := success.(bool); !ok {
		return decimal.Zero, fmt.Errorf("%w: %s/%s: request not successful", domain.ErrRateUnavailable, from, to)
	}

	rate, err := lookupDecimal("$.result", doc)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s/%s: no result", domain.ErrRateUnavailable, from, to)
	}
	return rate, nil
}

// FetchBTCRate returns the BTC price in currency
func (e *ExchangeRateHost) FetchBTCRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	if e.BTC == nil {
		return decimal.Zero, fmt.Errorf("%w: no BTC rate source", domain.ErrRateUnavailable)
	}
	return e.BTC.FetchBTCRate(ctx, currency)
}
