package gains

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// Lot is the unconsumed part of a buy trade at a point in time
type Lot struct {
	Buy       *domain.Trade
	Remaining decimal.Decimal
}

// consumption records how much of each buy has been matched by earlier sells
type consumption map[uuid.UUID]decimal.Decimal

// used returns the consumed quantity of a buy, zero when untouched
func (c consumption) used(buyID uuid.UUID) decimal.Decimal {
	return c[buyID]
}

// fifoConsumption replays every sell against the buys oldest-first and
// returns the quantity taken from each buy. Both slices must only hold
// trades strictly before the as-of timestamp. A sell that outruns the
// available buys consumes what exists and the shortfall is ignored.
func fifoConsumption(buys, sells []*domain.Trade) consumption {
	ordered := chronological(buys)
	used := make(consumption, len(ordered))

	for _, sell := range chronological(sells) {
		remaining := sell.AbsAmount()
		for _, buy := range ordered {
			if !remaining.IsPositive() {
				break
			}
			available := buy.Amount.Sub(used[buy.ID])
			if !available.IsPositive() {
				continue
			}
			take := decimal.Min(available, remaining)
			used[buy.ID] = used[buy.ID].Add(take)
			remaining = remaining.Sub(take)
		}
	}

	return used
}

// chronological returns a copy of trades ordered by timestamp ascending
func chronological(trades []*domain.Trade) []*domain.Trade {
	out := make([]*domain.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// orderCandidates returns buys in the order a sell consumes them under method.
// HIFO ties keep chronological order.
func orderCandidates(buys []*domain.Trade, method domain.CostBasisMethod) []*domain.Trade {
	out := chronological(buys)
	if method == domain.CostBasisHIFO {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rate.GreaterThan(out[j].Rate)
		})
	}
	return out
}

// costPerUnit is the fee-inclusive base currency cost of one BTC from a buy
func costPerUnit(buy *domain.Trade) decimal.Decimal {
	return buy.CounterValue.Add(buy.FeeBase).Div(buy.Amount)
}

// openLots returns the buys that still hold BTC after consumption, oldest first
func openLots(buys []*domain.Trade, used consumption) []Lot {
	lots := make([]Lot, 0, len(buys))
	for _, buy := range chronological(buys) {
		remaining := buy.Amount.Sub(used.used(buy.ID))
		if remaining.IsPositive() {
			lots = append(lots, Lot{Buy: buy, Remaining: remaining})
		}
	}
	return lots
}
