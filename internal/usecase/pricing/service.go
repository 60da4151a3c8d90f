package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds simultaneous requests to the price sources
const DefaultConcurrency = 4

// RefreshResult counts what a refresh run did per asset
type RefreshResult struct {
	Fetched int
	Skipped int
	Failed  int
}

// RefreshService stores today's price for every asset that has a symbol
type RefreshService struct {
	AssetRepo   domain.AssetRepository
	PriceRepo   domain.PriceRepository
	PriceSource domain.PriceSource

	Concurrency int
	location    *time.Location
	now         func() time.Time
	log         zerolog.Logger
}

// NewRefreshService creates a new RefreshService instance
func NewRefreshService(
	assetRepo domain.AssetRepository,
	priceRepo domain.PriceRepository,
	priceSource domain.PriceSource,
	loc *time.Location,
	log zerolog.Logger,
) *RefreshService {
	if loc == nil {
		loc = time.UTC
	}
	return &RefreshService{
		AssetRepo:   assetRepo,
		PriceRepo:   priceRepo,
		PriceSource: priceSource,
		Concurrency: DefaultConcurrency,
		location:    loc,
		now:         time.Now,
		log:         log.With().Str("component", "pricing").Logger(),
	}
}

// RefreshDailyPrices fetches and stores today's price of every asset with a symbol
// Logic:
//   - Assets without a symbol are not counted
//   - An asset already priced today is skipped
//   - A failed fetch or store is logged and counted, the run continues
//
// Only a failure to list assets is returned.
func (s *RefreshService) RefreshDailyPrices(ctx context.Context) (*RefreshResult, error) {
	assets, err := s.AssetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	today := domain.DateOf(s.now().In(s.location))

	var fetched, skipped, failed atomic.Int64

	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, asset := range assets {
		if !asset.HasSymbol() {
			continue
		}

		g.Go(func() error {
			outcome, err := s.refreshAsset(gctx, asset, today)
			switch {
			case err != nil:
				failed.Add(1)
				s.log.Warn().Err(err).Str("symbol", asset.Symbol).Msg("Price refresh failed")
			case outcome == outcomeSkipped:
				skipped.Add(1)
			default:
				fetched.Add(1)
			}
			// Per-asset failures never cancel the group
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &RefreshResult{
		Fetched: int(fetched.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}

	s.log.Info().
		Int("fetched", result.Fetched).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Daily price refresh finished")

	return result, nil
}

type outcome int

const (
	outcomeFetched outcome = iota
	outcomeSkipped
)

func (s *RefreshService) refreshAsset(ctx context.Context, asset *domain.Asset, today time.Time) (outcome, error) {
	latest, err := s.PriceRepo.LatestOnOrBefore(ctx, asset.ID, today)
	switch {
	case err == nil && domain.SameDate(latest.Date, today):
		return outcomeSkipped, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return 0, fmt.Errorf("failed to look up stored price: %w", err)
	}

	quote, err := s.PriceSource.FetchQuote(ctx, asset)
	if err != nil {
		return 0, err
	}

	// Dated by the source, which may report the previous close
	if err := s.PriceRepo.Create(ctx, quote.ToPrice(asset.ID)); err != nil {
		return 0, fmt.Errorf("failed to store price: %w", err)
	}

	s.log.Debug().
		Str("symbol", asset.Symbol).
		Str("price", quote.Price.String()).
		Str("source", quote.Source).
		Msg("Price stored")

	return outcomeFetched, nil
}
