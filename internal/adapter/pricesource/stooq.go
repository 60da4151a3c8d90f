package pricesource

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

var _ domain.PriceSource = (*Stooq)(nil)

// Stooq reads daily bars from the keyless Stooq CSV download
type Stooq struct {
	BaseURL string
	Client  *http.Client
}

// NewStooq creates a Stooq source
func NewStooq(cfg Config) *Stooq {
	return &Stooq{
		BaseURL: "https://stooq.com/q/d/l/",
		Client:  cfg.client(),
	}
}

// FetchQuote returns the most recent daily bar, dated by Stooq
func (s *Stooq) FetchQuote(ctx context.Context, asset *domain.Asset) (*domain.Quote, error) {
	if !asset.HasSymbol() {
		return nil, fmt.Errorf("%w: asset %q has no symbol", domain.ErrPriceUnavailable, asset.Name)
	}

	body, err := get(ctx, s.Client, s.BaseURL, url.Values{"s": {strings.ToLower(asset.Symbol)}, "i": {"d"}})
	if err != nil {
		return nil, fmt.Errorf("%w: stooq %s: %v", domain.ErrPriceUnavailable, asset.Symbol, err)
	}

	quote, err := parseStooqCSV(body)
	if err != nil {
		return nil, fmt.Errorf("%w: stooq %s: %v", domain.ErrPriceUnavailable, asset.Symbol, err)
	}
	return quote, nil
}

// parseStooqCSV reads the header and the last row of a Date,Open,High,Low,Close,Volume file
func parseStooqCSV(body []byte) (*domain.Quote, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimSpace(body)))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data")
	}

	header := records[0]
	last := records[len(records)-1]
	field := func(name string) string {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) && i < len(last) {
				return strings.TrimSpace(last[i])
			}
		}
		return ""
	}

	date, err := time.Parse("2006-01-02", field("Date"))
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	price, err := decimal.NewFromString(field("Close"))
	if err != nil {
		return nil, fmt.Errorf("invalid close: %w", err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("non-positive close %s", price)
	}

	optional := func(name string) *decimal.Decimal {
		d, err := decimal.NewFromString(field(name))
		if err != nil || d.IsZero() {
			return nil
		}
		return &d
	}

	return &domain.Quote{
		Price:  price,
		Open:   optional("Open"),
		High:   optional("High"),
		Low:    optional("Low"),
		Volume: optional("Volume"),
		Date:   date,
		Source: "stooq",
	}, nil
}
