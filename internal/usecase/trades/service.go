package trades

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// Summary aggregates the whole BTC trade history
type Summary struct {
	NetBTC         decimal.Decimal
	TotalBought    decimal.Decimal
	TotalSold      decimal.Decimal // unsigned
	AverageBuyRate decimal.Decimal // mean of buy rates, not volume weighted
	Latest         *domain.Trade   // nil without trades
}

// TradeService records and lists BTC trades
type TradeService struct {
	TradeRepo domain.TradeRepository
	log       zerolog.Logger
}

// NewTradeService creates a new TradeService instance
func NewTradeService(tradeRepo domain.TradeRepository, log zerolog.Logger) *TradeService {
	return &TradeService{
		TradeRepo: tradeRepo,
		log:       log.With().Str("component", "trades").Logger(),
	}
}

// RecordTrade validates and stores a new trade
// Logic:
//  1. Validate the trade
//  2. Reject a TxID that is already stored with ErrDuplicateTxID
//  3. Assign an ID and the type implied by the amount sign
func (s *TradeService) RecordTrade(ctx context.Context, trade *domain.Trade) (*domain.Trade, error) {
	if err := trade.Validate(); err != nil {
		return nil, err
	}

	if trade.TxID != nil {
		_, err := s.TradeRepo.GetByTxID(ctx, *trade.TxID)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTxID, *trade.TxID)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("failed to check txid: %w", err)
		}
	}

	trade.ID = uuid.New()
	trade.Type = trade.DeriveType()

	if err := s.TradeRepo.Create(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	s.log.Info().
		Str("trade_id", trade.ID.String()).
		Str("type", string(trade.Type)).
		Str("amount", trade.Amount.String()).
		Msg("Trade recorded")

	return trade, nil
}

// DeleteTrade removes a trade. It exists for administrative corrections only.
func (s *TradeService) DeleteTrade(ctx context.Context, id uuid.UUID) error {
	if _, err := s.TradeRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.TradeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	s.log.Warn().Str("trade_id", id.String()).Msg("Trade deleted")
	return nil
}

// ListTrades returns the trades matching filter, oldest first
func (s *TradeService) ListTrades(ctx context.Context, filter domain.TradeFilter) ([]*domain.Trade, error) {
	trades, err := s.TradeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// Summary aggregates every stored trade
func (s *TradeService) Summary(ctx context.Context) (*Summary, error) {
	trades, err := s.ListTrades(ctx, domain.TradeFilter{})
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	rateSum := decimal.Zero
	buys := 0

	for _, t := range trades {
		summary.NetBTC = summary.NetBTC.Add(t.Amount)
		switch {
		case t.IsBuy():
			summary.TotalBought = summary.TotalBought.Add(t.Amount)
			rateSum = rateSum.Add(t.Rate)
			buys++
		case t.IsSell():
			summary.TotalSold = summary.TotalSold.Add(t.AbsAmount())
		}
	}

	if buys > 0 {
		summary.AverageBuyRate = rateSum.Div(decimal.NewFromInt(int64(buys)))
	}
	if len(trades) > 0 {
		summary.Latest = trades[len(trades)-1]
	}

	return summary, nil
}
