package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeType represents the direction of a BTC trade
type TradeType string

const (
	TradeTypeBuy      TradeType = "buy"
	TradeTypeSell     TradeType = "sell"
	TradeTypeTransfer TradeType = "transfer"
)

// Trade represents an immutable BTC buy/sell/transfer record
type Trade struct {
	ID           uuid.UUID
	TxID         *string         // External transaction ID, unique when present
	Amount       decimal.Decimal // Signed BTC amount: positive = buy, negative = sell
	CounterValue decimal.Decimal // Base currency amount (always positive)
	Rate         decimal.Decimal // Base currency per BTC at trade time
	FeeBTC       decimal.Decimal
	FeeBase      decimal.Decimal
	Timestamp    time.Time
	Exchange     string
	Type         TradeType
	Notes        string
}

// IsBuy reports whether the trade adds BTC
func (t *Trade) IsBuy() bool {
	return t.Amount.IsPositive()
}

// IsSell reports whether the trade removes BTC
func (t *Trade) IsSell() bool {
	return t.Amount.IsNegative()
}

// AbsAmount returns the unsigned BTC quantity of the trade
func (t *Trade) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// DeriveType returns the trade type implied by the amount sign.
// Transfers keep their explicit type.
func (t *Trade) DeriveType() TradeType {
	if t.Type == TradeTypeTransfer {
		return TradeTypeTransfer
	}
	if t.IsBuy() {
		return TradeTypeBuy
	}
	return TradeTypeSell
}

// Validate ensures the trade adheres to domain rules
func (t *Trade) Validate() error {
	if t.Amount.IsZero() {
		return errors.New("trade amount cannot be zero")
	}
	if t.CounterValue.IsNegative() {
		return errors.New("trade counter value cannot be negative")
	}
	if t.Rate.IsNegative() {
		return errors.New("trade rate cannot be negative")
	}
	if t.FeeBTC.IsNegative() || t.FeeBase.IsNegative() {
		return errors.New("trade fees cannot be negative")
	}
	if t.Timestamp.IsZero() {
		return errors.New("trade timestamp is required")
	}
	if t.TxID != nil && *t.TxID == "" {
		return errors.New("trade txid cannot be empty when set")
	}
	return nil
}

// TradeSide selects buys, sells or both when querying trades
type TradeSide int

const (
	SideAny TradeSide = iota
	SideBuy
	SideSell
)

// TradeFilter narrows a trade query. Zero times are ignored.
// Results are always ordered by timestamp ascending.
type TradeFilter struct {
	Side   TradeSide
	From   time.Time // inclusive
	Until  time.Time // inclusive
	Before time.Time // exclusive
}

// Matches reports whether the trade passes the filter
func (f TradeFilter) Matches(t *Trade) bool {
	switch f.Side {
	case SideBuy:
		if !t.IsBuy() {
			return false
		}
	case SideSell:
		if !t.IsSell() {
			return false
		}
	}
	if !f.From.IsZero() && t.Timestamp.Before(f.From) {
		return false
	}
	if !f.Until.IsZero() && t.Timestamp.After(f.Until) {
		return false
	}
	if !f.Before.IsZero() && !t.Timestamp.Before(f.Before) {
		return false
	}
	return true
}
