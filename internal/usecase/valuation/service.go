package valuation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// DefaultFallbackUSDRate is used when the live USD rate cannot be fetched
var DefaultFallbackUSDRate = decimal.NewFromInt(150)

// Options tunes the valuation service
type Options struct {
	BaseCurrency    string          // defaults to JPY
	FallbackUSDRate decimal.Decimal // base currency per USD when the live rate is missing
	Location        *time.Location  // decides what "today" is, defaults to UTC
	Now             func() time.Time
}

// ValuationService builds daily valuation snapshots of every holding
type ValuationService struct {
	HoldingRepo  domain.HoldingRepository
	PriceRepo    domain.PriceRepository
	SnapshotRepo domain.SnapshotRepository
	TradeRepo    domain.TradeRepository
	PriceSource  domain.PriceSource
	RateSource   domain.RateSource

	baseCurrency    string
	fallbackUSDRate decimal.Decimal
	location        *time.Location
	now             func() time.Time
	log             zerolog.Logger
}

// NewValuationService creates a new ValuationService instance
func NewValuationService(
	holdingRepo domain.HoldingRepository,
	priceRepo domain.PriceRepository,
	snapshotRepo domain.SnapshotRepository,
	tradeRepo domain.TradeRepository,
	priceSource domain.PriceSource,
	rateSource domain.RateSource,
	opts Options,
	log zerolog.Logger,
) *ValuationService {
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = "JPY"
	}
	if !opts.FallbackUSDRate.IsPositive() {
		opts.FallbackUSDRate = DefaultFallbackUSDRate
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &ValuationService{
		HoldingRepo:     holdingRepo,
		PriceRepo:       priceRepo,
		SnapshotRepo:    snapshotRepo,
		TradeRepo:       tradeRepo,
		PriceSource:     priceSource,
		RateSource:      rateSource,
		baseCurrency:    opts.BaseCurrency,
		fallbackUSDRate: opts.FallbackUSDRate,
		location:        opts.Location,
		now:             opts.Now,
		log:             log.With().Str("component", "valuation").Logger(),
	}
}

// BaseCurrency returns the reporting currency of snapshots
func (s *ValuationService) BaseCurrency() string {
	return s.baseCurrency
}

// Today returns the current calendar date in the service location
func (s *ValuationService) Today() time.Time {
	return domain.DateOf(s.now().In(s.location))
}

// CalculateSnapshot values every holding as of targetDate
// Logic:
//   - Returns nil, nil when a snapshot already exists for the date
//   - Holdings without a price or FX rate are skipped and logged
//   - TotalBTC is the net sum of all trade amounts
//
// The snapshot is returned unpersisted.
func (s *ValuationService) CalculateSnapshot(ctx context.Context, targetDate time.Time) (*domain.Snapshot, error) {
	date := domain.DateOf(targetDate)

	exists, err := s.SnapshotRepo.Exists(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check snapshot for %s: %w", date.Format("2006-01-02"), err)
	}
	if exists {
		s.log.Debug().Str("date", date.Format("2006-01-02")).Msg("Snapshot already exists")
		return nil, nil
	}

	holdings, err := s.HoldingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	rates := s.fetchRates(ctx, holdings)

	totalBase := decimal.Zero
	byAssetClass := domain.Breakdown{}
	byCurrency := domain.Breakdown{}
	byAccountType := domain.Breakdown{}

	for _, holding := range holdings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		asset := holding.Asset
		price, err := s.resolvePrice(ctx, &asset, date)
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("asset", asset.Name).
				Str("symbol", asset.Symbol).
				Msg("No price found, skipping holding")
			continue
		}

		valueNative := holding.Quantity.Mul(price)

		rate, ok := rates.Rate(asset.Currency, s.baseCurrency)
		if !ok {
			s.log.Warn().
				Str("asset", asset.Name).
				Str("pair", domain.PairKey(asset.Currency, s.baseCurrency)).
				Msg("No FX rate, skipping holding")
			continue
		}
		valueBase := valueNative.Mul(rate)

		totalBase = totalBase.Add(valueBase)
		byAssetClass.Add(string(asset.Classification.AssetClass), valueBase)
		byCurrency.Add(asset.Currency, valueNative)
		byAccountType.Add(string(holding.AccountType), valueBase)
	}

	totalBTC, err := s.netBTC(ctx)
	if err != nil {
		return nil, err
	}

	usdRate, ok := rates.Rate("USD", s.baseCurrency)
	if !ok {
		usdRate = s.fallbackUSDRate
	}

	return &domain.Snapshot{
		ID:            uuid.New(),
		Date:          date,
		TotalBase:     totalBase,
		TotalUSD:      totalBase.Div(usdRate),
		TotalBTC:      totalBTC,
		ByAssetClass:  byAssetClass,
		ByCurrency:    byCurrency,
		ByAccountType: byAccountType,
		FXRates:       rates,
		CreatedAt:     s.now(),
	}, nil
}

// RecordDailySnapshot calculates the snapshot for date and stores it
// Returns nil, nil when the date already had a snapshot.
func (s *ValuationService) RecordDailySnapshot(ctx context.Context, date time.Time) (*domain.Snapshot, error) {
	snapshot, err := s.CalculateSnapshot(ctx, date)
	if err != nil || snapshot == nil {
		return nil, err
	}

	if err := s.SnapshotRepo.Create(ctx, snapshot); err != nil {
		if errors.Is(err, domain.ErrSnapshotExists) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.log.Info().
		Str("date", snapshot.Date.Format("2006-01-02")).
		Str("total", snapshot.TotalBase.StringFixed(0)).
		Str("currency", s.baseCurrency).
		Msg("Daily valuation calculated")

	return snapshot, nil
}

// fetchRates builds the FX table for USD, BTC and every holding currency
// Currencies whose rate cannot be fetched are left out.
func (s *ValuationService) fetchRates(ctx context.Context, holdings []*domain.Holding) domain.FXRates {
	rates := domain.FXRates{}
	if s.RateSource == nil {
		return rates
	}

	currencies := map[string]bool{"USD": true}
	for _, h := range holdings {
		currencies[h.Asset.Currency] = true
	}
	delete(currencies, s.baseCurrency)

	codes := make([]string, 0, len(currencies))
	for code := range currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		rate, err := s.RateSource.FetchRate(ctx, code, s.baseCurrency)
		if err != nil {
			s.log.Warn().Err(err).Str("pair", domain.PairKey(code, s.baseCurrency)).Msg("FX rate unavailable")
			continue
		}
		rates[domain.PairKey(code, s.baseCurrency)] = rate
	}

	btcRate, err := s.RateSource.FetchBTCRate(ctx, s.baseCurrency)
	if err != nil {
		s.log.Warn().Err(err).Str("pair", domain.PairKey("BTC", s.baseCurrency)).Msg("BTC rate unavailable")
	} else {
		rates[domain.PairKey("BTC", s.baseCurrency)] = btcRate
	}

	return rates
}

// resolvePrice prefers stored history on or before date and falls back to a
// live quote, persisted before use, only when date is today
func (s *ValuationService) resolvePrice(ctx context.Context, asset *domain.Asset, date time.Time) (decimal.Decimal, error) {
	stored, err := s.PriceRepo.LatestOnOrBefore(ctx, asset.ID, date)
	if err == nil {
		return stored.Price, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}

	if !date.Equal(s.Today()) || s.PriceSource == nil || !asset.HasSymbol() {
		return decimal.Zero, domain.ErrPriceUnavailable
	}

	quote, err := s.PriceSource.FetchQuote(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.PriceRepo.Create(ctx, quote.ToPrice(asset.ID)); err != nil {
		s.log.Warn().Err(err).Str("symbol", asset.Symbol).Msg("Failed to store fetched price")
	}

	return quote.Price, nil
}

// netBTC sums the signed amounts of every trade
func (s *ValuationService) netBTC(ctx context.Context) (decimal.Decimal, error) {
	trades, err := s.TradeRepo.List(ctx, domain.TradeFilter{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list trades: %w", err)
	}

	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.Amount)
	}
	return total, nil
}
