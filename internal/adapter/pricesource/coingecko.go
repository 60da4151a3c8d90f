package pricesource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

var _ domain.PriceSource = (*CoinGecko)(nil)

// CoinGecko quotes crypto assets. The asset symbol is the CoinGecko coin id,
// such as "bitcoin".
type CoinGecko struct {
	BaseURL  string
	APIKey   string
	Currency string
	Client   *http.Client
	today    func() time.Time
}

// NewCoinGecko creates a CoinGecko source quoting in cfg's quote currency
func NewCoinGecko(cfg Config) *CoinGecko {
	return &CoinGecko{
		BaseURL:  "https://api.coingecko.com/api/v3",
		APIKey:   cfg.CoinGeckoAPIKey,
		Currency: cfg.quoteCurrency(),
		Client:   cfg.client(),
		today:    cfg.today,
	}
}

// FetchQuote returns the current price of the coin in the asset's currency,
// or in the quote currency when the asset has none
func (c *CoinGecko) FetchQuote(ctx context.Context, asset *domain.Asset) (*domain.Quote, error) {
	id := strings.ToLower(strings.TrimSpace(asset.Symbol))
	if id == "" {
		return nil, fmt.Errorf("%w: asset %q has no coin id", domain.ErrPriceUnavailable, asset.Name)
	}
	vs := strings.ToLower(strings.TrimSpace(asset.Currency))
	if vs == "" {
		vs = strings.ToLower(c.Currency)
	}

	doc, err := c.simplePrice(ctx, id, vs)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko %s: %v", domain.ErrPriceUnavailable, id, err)
	}

	price, err := lookupDecimal(fmt.Sprintf("$[%q][%q]", id, vs), doc)
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("%w: coingecko has no %s price for %s", domain.ErrPriceUnavailable, vs, id)
	}

	return &domain.Quote{
		Price:  price,
		Volume: lookupOptional(fmt.Sprintf("$[%q][%q]", id, vs+"_24h_vol"), doc),
		Date:   c.today(),
		Source: "coingecko",
	}, nil
}

// FetchBTCRate returns the bitcoin price in currency
func (c *CoinGecko) FetchBTCRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	vs := strings.ToLower(currency)

	doc, err := c.simplePrice(ctx, "bitcoin", vs)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: coingecko BTC/%s: %v", domain.ErrRateUnavailable, currency, err)
	}

	rate, err := lookupDecimal(fmt.Sprintf("$.bitcoin[%q]", vs), doc)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: coingecko has no BTC/%s rate", domain.ErrRateUnavailable, currency)
	}
	return rate, nil
}

func (c *CoinGecko) simplePrice(ctx context.Context, id, vs string) (any, error) {
	params := url.Values{
		"ids":              {id},
		"vs_currencies":    {vs},
		"include_24hr_vol": {"true"},
	}
	if c.APIKey != "" {
		params.Set("x_cg_demo_api_key", c.APIKey)
	}
	return getJSON(ctx, c.Client, c.BaseURL+"/simple/price", params)
}
