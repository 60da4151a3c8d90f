package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTrade_Validate(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	empty := ""

	tests := []struct {
		name    string
		trade   Trade
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid buy",
			trade: Trade{
				ID:           uuid.New(),
				Amount:       decimal.NewFromFloat(0.5),
				CounterValue: decimal.NewFromInt(2500000),
				Rate:         decimal.NewFromInt(5000000),
				Timestamp:    ts,
			},
			wantErr: false,
		},
		{
			name: "Valid sell",
			trade: Trade{
				ID:           uuid.New(),
				Amount:       decimal.NewFromFloat(-0.5),
				CounterValue: decimal.NewFromInt(2500000),
				Rate:         decimal.NewFromInt(5000000),
				Timestamp:    ts,
			},
			wantErr: false,
		},
		{
			name: "Zero amount should fail",
			trade: Trade{
				Amount:    decimal.Zero,
				Timestamp: ts,
			},
			wantErr: true,
			errMsg:  "trade amount cannot be zero",
		},
		{
			name: "Negative counter value should fail",
			trade: Trade{
				Amount:       decimal.NewFromInt(1),
				CounterValue: decimal.NewFromInt(-1),
				Timestamp:    ts,
			},
			wantErr: true,
			errMsg:  "trade counter value cannot be negative",
		},
		{
			name: "Negative fee should fail",
			trade: Trade{
				Amount:    decimal.NewFromInt(1),
				FeeBase:   decimal.NewFromInt(-10),
				Timestamp: ts,
			},
			wantErr: true,
			errMsg:  "trade fees cannot be negative",
		},
		{
			name: "Missing timestamp should fail",
			trade: Trade{
				Amount: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "trade timestamp is required",
		},
		{
			name: "Empty txid should fail",
			trade: Trade{
				Amount:    decimal.NewFromInt(1),
				Timestamp: ts,
				TxID:      &empty,
			},
			wantErr: true,
			errMsg:  "trade txid cannot be empty when set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.trade.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTrade_DeriveType(t *testing.T) {
	buy := Trade{Amount: decimal.NewFromInt(1)}
	sell := Trade{Amount: decimal.NewFromInt(-1)}
	transfer := Trade{Amount: decimal.NewFromInt(-1), Type: TradeTypeTransfer}

	assert.Equal(t, TradeTypeBuy, buy.DeriveType())
	assert.Equal(t, TradeTypeSell, sell.DeriveType())
	assert.Equal(t, TradeTypeTransfer, transfer.DeriveType())
	assert.True(t, buy.IsBuy())
	assert.True(t, sell.IsSell())
	assert.Equal(t, decimal.NewFromInt(1).String(), sell.AbsAmount().String())
}

func TestTradeFilter_Matches(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	buy := &Trade{Amount: decimal.NewFromInt(1), Timestamp: jan}
	sell := &Trade{Amount: decimal.NewFromInt(-1), Timestamp: feb}

	assert.True(t, TradeFilter{}.Matches(buy))
	assert.True(t, TradeFilter{Side: SideBuy}.Matches(buy))
	assert.False(t, TradeFilter{Side: SideBuy}.Matches(sell))
	assert.True(t, TradeFilter{Side: SideSell}.Matches(sell))

	// Before is exclusive
	assert.False(t, TradeFilter{Before: jan}.Matches(buy))
	assert.True(t, TradeFilter{Before: feb}.Matches(buy))

	// From and Until are inclusive
	assert.True(t, TradeFilter{From: feb, Until: feb}.Matches(sell))
	assert.False(t, TradeFilter{From: feb}.Matches(buy))
	assert.False(t, TradeFilter{Until: jan}.Matches(sell))
}

func TestParseCostBasisMethod(t *testing.T) {
	m, err := ParseCostBasisMethod("")
	assert.NoError(t, err)
	assert.Equal(t, CostBasisFIFO, m)

	m, err = ParseCostBasisMethod("hifo")
	assert.NoError(t, err)
	assert.Equal(t, CostBasisHIFO, m)

	_, err = ParseCostBasisMethod("LIFO")
	assert.Error(t, err)
}
