package pricesource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/simaogato/assetledger-backend/internal/domain"
)

var _ domain.PriceSource = (*JSONQuote)(nil)

// QuotePaths locates the quote fields in a JSON response. Only Price is required.
type QuotePaths struct {
	Price  string
	Open   string
	High   string
	Low    string
	Volume string
}

// JSONQuote is a ticker price source for REST APIs answering with one JSON
// document per symbol
type JSONQuote struct {
	Name    string
	BaseURL string
	Client  *http.Client
	Params  func(symbol string) url.Values
	Paths   QuotePaths
	today   func() time.Time
}

// NewTwelveData creates the Twelve Data /quote source
func NewTwelveData(cfg Config) *JSONQuote {
	return &JSONQuote{
		Name:    "twelve_data",
		BaseURL: "https://api.twelvedata.com/quote",
		Client:  cfg.client(),
		Params: func(symbol string) url.Values {
			return url.Values{"symbol": {symbol}, "apikey": {cfg.TwelveDataAPIKey}}
		},
		Paths: QuotePaths{
			Price:  "$.close",
			Open:   "$.open",
			High:   "$.high",
			Low:    "$.low",
			Volume: "$.volume",
		},
		today: cfg.today,
	}
}

// NewAlphaVantage creates the Alpha Vantage GLOBAL_QUOTE source
func NewAlphaVantage(cfg Config) *JSONQuote {
	return &JSONQuote{
		Name:    "alpha_vantage",
		BaseURL: "https://www.alphavantage.co/query",
		Client:  cfg.client(),
		Params: func(symbol string) url.Values {
			return url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}, "apikey": {cfg.AlphaVantageAPIKey}}
		},
		Paths: QuotePaths{
			Price:  `$["Global Quote"]["05. price"]`,
			Open:   `$["Global Quote"]["02. open"]`,
			High:   `$["Global Quote"]["03. high"]`,
			Low:    `$["Global Quote"]["04. low"]`,
			Volume: `$["Global Quote"]["06. volume"]`,
		},
		today: cfg.today,
	}
}

// FetchQuote fetches the symbol's document and reads the quote out of it
// The quote is dated today: these endpoints report the latest session.
func (s *JSONQuote) FetchQuote(ctx context.Context, asset *domain.Asset) (*domain.Quote, error) {
	if !asset.HasSymbol() {
		return nil, fmt.Errorf("%w: asset %q has no symbol", domain.ErrPriceUnavailable, asset.Name)
	}

	doc, err := getJSON(ctx, s.Client, s.BaseURL, s.Params(asset.Symbol))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrPriceUnavailable, s.Name, asset.Symbol, err)
	}

	price, err := lookupDecimal(s.Paths.Price, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrPriceUnavailable, s.Name, asset.Symbol, err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: %s %s: non-positive price %s", domain.ErrPriceUnavailable, s.Name, asset.Symbol, price)
	}

	return &domain.Quote{
		Price:  price,
		Open:   lookupOptional(s.Paths.Open, doc),
		High:   lookupOptional(s.Paths.High, doc),
		Low:    lookupOptional(s.Paths.Low, doc),
		Volume: lookupOptional(s.Paths.Volume, doc),
		Date:   s.today(),
		Source: s.Name,
	}, nil
}
