package gains

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeTradeRepository is an in-memory TradeRepository honouring TradeFilter
type fakeTradeRepository struct {
	trades []*domain.Trade
}

func (f *fakeTradeRepository) List(ctx context.Context, filter domain.TradeFilter) ([]*domain.Trade, error) {
	out := make([]*domain.Trade, 0)
	for _, t := range f.trades {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeTradeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trade, error) {
	for _, t := range f.trades {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTradeRepository) GetByTxID(ctx context.Context, txID string) (*domain.Trade, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeTradeRepository) Create(ctx context.Context, trade *domain.Trade) error {
	f.trades = append(f.trades, trade)
	return nil
}

func (f *fakeTradeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

// MockTradeRepository is a mock implementation of TradeRepository for testing
type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) List(ctx context.Context, filter domain.TradeFilter) ([]*domain.Trade, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Trade), args.Error(1)
}

func (m *MockTradeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trade, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trade), args.Error(1)
}

func (m *MockTradeRepository) GetByTxID(ctx context.Context, txID string) (*domain.Trade, error) {
	args := m.Called(ctx, txID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trade), args.Error(1)
}

func (m *MockTradeRepository) Create(ctx context.Context, trade *domain.Trade) error {
	return m.Called(ctx, trade).Error(0)
}

func (m *MockTradeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

var t0 = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

// buy builds a buy of amount BTC at rate base-currency per BTC, hours after t0
func buy(hours int, amount, rate string) *domain.Trade {
	a := decimal.RequireFromString(amount)
	r := decimal.RequireFromString(rate)
	return &domain.Trade{
		ID:           uuid.New(),
		Amount:       a,
		CounterValue: a.Mul(r),
		Rate:         r,
		Timestamp:    t0.Add(time.Duration(hours) * time.Hour),
		Type:         domain.TradeTypeBuy,
	}
}

// sell builds a sell of amount BTC for a gross counter value, hours after t0
func sell(hours int, amount, counterValue string) *domain.Trade {
	a := decimal.RequireFromString(amount)
	cv := decimal.RequireFromString(counterValue)
	return &domain.Trade{
		ID:           uuid.New(),
		Amount:       a.Neg(),
		CounterValue: cv,
		Rate:         cv.Div(a),
		Timestamp:    t0.Add(time.Duration(hours) * time.Hour),
		Type:         domain.TradeTypeSell,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func newService(trades ...*domain.Trade) *GainService {
	return NewGainService(&fakeTradeRepository{trades: trades}, time.UTC, zerolog.Nop())
}

func exampleHistory() ([]*domain.Trade, *domain.Trade) {
	s := sell(10, "1.5", "9000000")
	return []*domain.Trade{
		buy(1, "1.0", "3000000"),
		buy(2, "1.0", "4000000"),
		buy(3, "0.5", "5000000"),
		s,
	}, s
}

func TestCalculateRealizedGain_FIFO(t *testing.T) {
	trades, s := exampleHistory()
	service := newService(trades...)

	result, err := service.CalculateRealizedGain(context.Background(), s, domain.CostBasisFIFO)

	require.NoError(t, err)
	assertDecimal(t, "9000000", result.GrossProceeds)
	assertDecimal(t, "5000000", result.CostBasis)
	assertDecimal(t, "4000000", result.RealizedGain)
	assertDecimal(t, "1.5", result.SellAmount)
	require.Len(t, result.MatchedLots, 2)
	assert.Equal(t, trades[0].ID, result.MatchedLots[0].BuyID)
	assertDecimal(t, "1", result.MatchedLots[0].Amount)
	assert.Equal(t, trades[1].ID, result.MatchedLots[1].BuyID)
	assertDecimal(t, "0.5", result.MatchedLots[1].Amount)
	assert.Equal(t, domain.CostBasisFIFO, result.Method)
}

func TestCalculateRealizedGain_HIFO(t *testing.T) {
	trades, s := exampleHistory()
	service := newService(trades...)

	result, err := service.CalculateRealizedGain(context.Background(), s, domain.CostBasisHIFO)

	require.NoError(t, err)
	assertDecimal(t, "6500000", result.CostBasis)
	assertDecimal(t, "2500000", result.RealizedGain)
	require.Len(t, result.MatchedLots, 2)
	assert.Equal(t, trades[2].ID, result.MatchedLots[0].BuyID)
	assertDecimal(t, "0.5", result.MatchedLots[0].Amount)
	assertDecimal(t, "5000000", result.MatchedLots[0].CostPerUnit)
	assert.Equal(t, trades[1].ID, result.MatchedLots[1].BuyID)
	assertDecimal(t, "1", result.MatchedLots[1].Amount)
}

func TestCalculateRealizedGain_InsufficientLots(t *testing.T) {
	s := sell(5, "2.0", "10000000")
	service := newService(buy(1, "1.0", "3000000"), s)

	result, err := service.CalculateRealizedGain(context.Background(), s, domain.CostBasisFIFO)

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrInsufficientLots))
}

func TestCalculateRealizedGain_NotASell(t *testing.T) {
	b := buy(1, "1.0", "3000000")
	service := newService(b)

	_, err := service.CalculateRealizedGain(context.Background(), b, domain.CostBasisFIFO)

	assert.ErrorIs(t, err, domain.ErrInvalidTradeDirection)
}

func TestCalculateRealizedGain_NoPriorBuys(t *testing.T) {
	s := sell(1, "0.1", "500000")
	// A buy after the sell does not count
	service := newService(s, buy(2, "1.0", "3000000"))

	_, err := service.CalculateRealizedGain(context.Background(), s, domain.CostBasisFIFO)

	assert.ErrorIs(t, err, domain.ErrNoPriorBuys)
}

func TestCalculateRealizedGain_PriorSellsConsumeLots(t *testing.T) {
	b1 := buy(1, "1.0", "3000000")
	b2 := buy(2, "1.0", "4000000")
	earlier := sell(3, "0.5", "2500000")
	later := sell(4, "1.0", "6000000")
	service := newService(b1, b2, earlier, later)

	// FIFO: 0.5 left in the first lot, then 0.5 of the second
	result, err := service.CalculateRealizedGain(context.Background(), later, domain.CostBasisFIFO)
	require.NoError(t, err)
	assertDecimal(t, "3500000", result.CostBasis)
	assertDecimal(t, "2500000", result.RealizedGain)

	// HIFO: history is replayed FIFO, so the 4M lot is still whole
	result, err = service.CalculateRealizedGain(context.Background(), later, domain.CostBasisHIFO)
	require.NoError(t, err)
	assertDecimal(t, "4000000", result.CostBasis)
	require.Len(t, result.MatchedLots, 1)
	assert.Equal(t, b2.ID, result.MatchedLots[0].BuyID)
}

func TestCalculateRealizedGain_FeesAffectProceedsAndCost(t *testing.T) {
	b := buy(1, "1.0", "3000000")
	b.FeeBase = decimal.NewFromInt(1000)
	s := sell(2, "1.0", "4000000")
	s.FeeBase = decimal.NewFromInt(2000)
	service := newService(b, s)

	result, err := service.CalculateRealizedGain(context.Background(), s, domain.CostBasisFIFO)

	require.NoError(t, err)
	assertDecimal(t, "3998000", result.GrossProceeds)
	assertDecimal(t, "3001000", result.CostBasis)
	assertDecimal(t, "997000", result.RealizedGain)
}

func TestCalculateRealizedGain_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTradeRepository)
	service := NewGainService(repo, time.UTC, zerolog.Nop())
	s := sell(1, "1.0", "1000")

	repo.On("List", ctx, domain.TradeFilter{Side: domain.SideBuy, Before: s.Timestamp}).
		Return(nil, errors.New("connection refused"))

	_, err := service.CalculateRealizedGain(ctx, s, domain.CostBasisFIFO)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	repo.AssertExpectations(t)
}

func TestCalculateRealizedGainByID_NotFound(t *testing.T) {
	service := newService()

	_, err := service.CalculateRealizedGainByID(context.Background(), uuid.New(), domain.CostBasisFIFO)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// randomBuys returns n buys with amounts in tenths of BTC and whole-number rates
func randomBuys(r *rand.Rand, n int) ([]*domain.Trade, decimal.Decimal, decimal.Decimal) {
	trades := make([]*domain.Trade, 0, n)
	totalAmount := decimal.Zero
	totalCost := decimal.Zero
	for i := 0; i < n; i++ {
		amount := decimal.New(int64(1+r.Intn(20)), -1)
		rate := decimal.NewFromInt(int64(1000000 + r.Intn(9000000)))
		b := buy(i+1, amount.String(), rate.String())
		trades = append(trades, b)
		totalAmount = totalAmount.Add(amount)
		totalCost = totalCost.Add(b.CounterValue)
	}
	return trades, totalAmount, totalCost
}

func TestCalculateRealizedGain_FullLiquidationCostsEveryBuy(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	tolerance := decimal.New(1, -6)

	for i := 0; i < 50; i++ {
		buys, totalAmount, totalCost := randomBuys(r, 1+r.Intn(8))
		s := sell(100, totalAmount.String(), "1")
		service := newService(append(buys, s)...)

		result, err := service.CalculateRealizedGain(context.Background(), s, domain.CostBasisFIFO)
		require.NoError(t, err)

		matched := decimal.Zero
		for _, lot := range result.MatchedLots {
			matched = matched.Add(lot.Amount)
		}
		assert.True(t, matched.Equal(totalAmount), "matched %s of %s", matched, totalAmount)
		assert.True(t, result.CostBasis.Sub(totalCost).Abs().LessThan(tolerance),
			"cost basis %s, total cost %s", result.CostBasis, totalCost)
	}
}

func TestCalculateRealizedGain_HIFONeverBelowFIFO(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		buys, totalAmount, _ := randomBuys(r, 2+r.Intn(8))
		// Sell somewhere between a tenth and all of the position
		tenths := totalAmount.Mul(decimal.NewFromInt(10)).IntPart()
		amount := decimal.New(1+r.Int63n(tenths), -1)
		s := sell(100, amount.String(), "1")
		service := newService(append(buys, s)...)

		fifo, err := service.CalculateRealizedGain(context.Background(), s, domain.CostBasisFIFO)
		require.NoError(t, err)
		hifo, err := service.CalculateRealizedGain(context.Background(), s, domain.CostBasisHIFO)
		require.NoError(t, err)

		assert.True(t, hifo.CostBasis.GreaterThanOrEqual(fifo.CostBasis),
			"hifo %s < fifo %s", hifo.CostBasis, fifo.CostBasis)
	}
}

func TestOpenLots(t *testing.T) {
	b1 := buy(1, "1.0", "3000000")
	b2 := buy(2, "1.0", "4000000")
	s := sell(3, "1.25", "6000000")
	service := newService(b1, b2, s)

	lots, err := service.OpenLots(context.Background(), t0.Add(24*time.Hour))

	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, b2.ID, lots[0].Buy.ID)
	assertDecimal(t, "0.75", lots[0].Remaining)
}
