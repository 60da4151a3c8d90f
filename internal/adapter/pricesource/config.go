package pricesource

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// DefaultTimeout matches the per-request timeout used when none is configured
const DefaultTimeout = 30 * time.Second

// Config carries everything the price sources need. Empty keys disable the
// sources that require one.
type Config struct {
	TwelveDataAPIKey   string
	AlphaVantageAPIKey string
	CoinGeckoAPIKey    string
	ExchangeRateAPIKey string
	QuoteCurrency      string // currency crypto prices are quoted in
	Timeout            time.Duration
	Location           *time.Location // decides the date stamped on live quotes
	Now                func() time.Time
}

func (c Config) client() *http.Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// today returns the current calendar date in the configured location
func (c Config) today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return domain.DateOf(now().In(loc))
}

func (c Config) quoteCurrency() string {
	if c.QuoteCurrency == "" {
		return "JPY"
	}
	return c.QuoteCurrency
}

// New wires the price and rate sources from cfg
// Crypto assets go to CoinGecko. Everything else tries Twelve Data, Stooq
// and Alpha Vantage in that order, skipping sources without an API key.
func New(cfg Config, log zerolog.Logger) (domain.PriceSource, domain.RateSource) {
	coingecko := NewCoinGecko(cfg)

	var chain []domain.PriceSource
	if cfg.TwelveDataAPIKey != "" {
		chain = append(chain, NewTwelveData(cfg))
	}
	chain = append(chain, NewStooq(cfg))
	if cfg.AlphaVantageAPIKey != "" {
		chain = append(chain, NewAlphaVantage(cfg))
	}

	prices := &Router{
		Crypto:  coingecko,
		Default: NewFallback(log, chain...),
	}

	rates := NewExchangeRateHost(cfg)
	rates.BTC = coingecko

	return prices, rates
}
