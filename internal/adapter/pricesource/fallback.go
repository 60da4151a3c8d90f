package pricesource

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

var (
	_ domain.PriceSource = (*Fallback)(nil)
	_ domain.PriceSource = (*Router)(nil)
)

// Fallback asks each source in turn and returns the first quote
type Fallback struct {
	Sources []domain.PriceSource
	log     zerolog.Logger
}

// NewFallback creates a Fallback over sources, tried in the given order
func NewFallback(log zerolog.Logger, sources ...domain.PriceSource) *Fallback {
	return &Fallback{
		Sources: sources,
		log:     log.With().Str("component", "pricesource").Logger(),
	}
}

// FetchQuote returns the first successful quote
// When every source fails the errors are joined under ErrPriceUnavailable.
func (f *Fallback) FetchQuote(ctx context.Context, asset *domain.Asset) (*domain.Quote, error) {
	var errs []error
	for _, source := range f.Sources {
		quote, err := source.FetchQuote(ctx, asset)
		if err == nil {
			return quote, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.log.Debug().Err(err).Str("symbol", asset.Symbol).Msg("Price source failed, trying next")
		errs = append(errs, err)
	}

	f.log.Warn().Str("symbol", asset.Symbol).Msg("Failed to fetch price from all sources")
	return nil, fmt.Errorf("%w: %s: %w", domain.ErrPriceUnavailable, asset.Symbol, errors.Join(errs...))
}

// Router sends crypto assets to the Crypto source and everything else to Default
type Router struct {
	Crypto  domain.PriceSource
	Default domain.PriceSource
}

// FetchQuote dispatches on the asset class
func (r *Router) FetchQuote(ctx context.Context, asset *domain.Asset) (*domain.Quote, error) {
	if asset.IsCrypto() {
		return r.Crypto.FetchQuote(ctx, asset)
	}
	return r.Default.FetchQuote(ctx, asset)
}
