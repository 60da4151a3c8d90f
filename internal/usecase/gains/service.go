package gains

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// MatchedLot is one buy lot that funded part of a sell
type MatchedLot struct {
	BuyID       uuid.UUID
	BuyDate     time.Time
	Amount      decimal.Decimal
	Rate        decimal.Decimal
	CostPerUnit decimal.Decimal
}

// GainResult is the realized gain of a single sell trade
type GainResult struct {
	SellTradeID   uuid.UUID
	SellDate      time.Time
	SellAmount    decimal.Decimal
	GrossProceeds decimal.Decimal
	CostBasis     decimal.Decimal
	RealizedGain  decimal.Decimal
	Method        domain.CostBasisMethod
	MatchedLots   []MatchedLot
}

// GainService computes realized BTC gains from the trade history
type GainService struct {
	TradeRepo domain.TradeRepository
	Location  *time.Location
	log       zerolog.Logger
}

// NewGainService creates a new GainService instance
// loc decides the calendar year boundaries of reports, UTC when nil
func NewGainService(tradeRepo domain.TradeRepository, loc *time.Location, log zerolog.Logger) *GainService {
	if loc == nil {
		loc = time.UTC
	}
	return &GainService{
		TradeRepo: tradeRepo,
		Location:  loc,
		log:       log.With().Str("component", "gains").Logger(),
	}
}

// CalculateRealizedGain matches a sell against the buys before it
// Logic:
//  1. Candidate buys are all buys strictly before the sell, ordered by method
//  2. Each buy's availability is what earlier sells left of it (always replayed FIFO)
//  3. Lots are consumed in order until the sell amount is covered
//
// The history is recomputed on every call; nothing is cached between calls.
func (s *GainService) CalculateRealizedGain(ctx context.Context, sell *domain.Trade, method domain.CostBasisMethod) (*GainResult, error) {
	if !sell.IsSell() {
		return nil, domain.ErrInvalidTradeDirection
	}

	buys, err := s.TradeRepo.List(ctx, domain.TradeFilter{Side: domain.SideBuy, Before: sell.Timestamp})
	if err != nil {
		return nil, fmt.Errorf("failed to list buys before sell: %w", err)
	}
	if len(buys) == 0 {
		return nil, domain.ErrNoPriorBuys
	}

	used, err := s.consumedBefore(ctx, sell.Timestamp, buys)
	if err != nil {
		return nil, err
	}

	sellAmount := sell.AbsAmount()
	remaining := sellAmount
	costBasis := decimal.Zero
	matched := make([]MatchedLot, 0)

	for _, buy := range orderCandidates(buys, method) {
		if !remaining.IsPositive() {
			break
		}

		available := buy.Amount.Sub(used.used(buy.ID))
		if !available.IsPositive() {
			continue
		}

		matchAmount := decimal.Min(available, remaining)
		unitCost := costPerUnit(buy)
		costBasis = costBasis.Add(matchAmount.Mul(unitCost))

		matched = append(matched, MatchedLot{
			BuyID:       buy.ID,
			BuyDate:     buy.Timestamp,
			Amount:      matchAmount,
			Rate:        buy.Rate,
			CostPerUnit: unitCost,
		})

		remaining = remaining.Sub(matchAmount)
	}

	if remaining.IsPositive() {
		return nil, fmt.Errorf("%w: sell of %s BTC, %s BTC unmatched", domain.ErrInsufficientLots, sellAmount, remaining)
	}

	grossProceeds := sell.CounterValue.Sub(sell.FeeBase)

	return &GainResult{
		SellTradeID:   sell.ID,
		SellDate:      sell.Timestamp,
		SellAmount:    sellAmount,
		GrossProceeds: grossProceeds,
		CostBasis:     costBasis,
		RealizedGain:  grossProceeds.Sub(costBasis),
		Method:        method,
		MatchedLots:   matched,
	}, nil
}

// CalculateRealizedGainByID loads a trade and calculates its realized gain
func (s *GainService) CalculateRealizedGainByID(ctx context.Context, tradeID uuid.UUID, method domain.CostBasisMethod) (*GainResult, error) {
	trade, err := s.TradeRepo.GetByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	return s.CalculateRealizedGain(ctx, trade, method)
}

// OpenLots returns the buy lots still holding BTC just before asOf, FIFO consumption
func (s *GainService) OpenLots(ctx context.Context, asOf time.Time) ([]Lot, error) {
	buys, err := s.TradeRepo.List(ctx, domain.TradeFilter{Side: domain.SideBuy, Before: asOf})
	if err != nil {
		return nil, fmt.Errorf("failed to list buys: %w", err)
	}

	used, err := s.consumedBefore(ctx, asOf, buys)
	if err != nil {
		return nil, err
	}

	return openLots(buys, used), nil
}

// consumedBefore replays all sells strictly before asOf against buys
func (s *GainService) consumedBefore(ctx context.Context, asOf time.Time, buys []*domain.Trade) (consumption, error) {
	sells, err := s.TradeRepo.List(ctx, domain.TradeFilter{Side: domain.SideSell, Before: asOf})
	if err != nil {
		return nil, fmt.Errorf("failed to list sells before %s: %w", asOf.Format(time.RFC3339), err)
	}
	return fifoConsumption(buys, sells), nil
}
