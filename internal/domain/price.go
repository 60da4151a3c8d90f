package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Price is one point of daily price history for an asset, unique per (asset, date)
type Price struct {
	ID      uuid.UUID
	AssetID uuid.UUID
	Date    time.Time // Calendar date, time of day is ignored
	Price   decimal.Decimal
	Open    *decimal.Decimal
	High    *decimal.Decimal
	Low     *decimal.Decimal
	Volume  *decimal.Decimal
	Source  string
}

// Quote is what a price source returns for a symbol
type Quote struct {
	Price  decimal.Decimal
	Open   *decimal.Decimal
	High   *decimal.Decimal
	Low    *decimal.Decimal
	Volume *decimal.Decimal
	Date   time.Time
	Source string
}

// ToPrice converts a fetched quote into a storable price for an asset
func (q *Quote) ToPrice(assetID uuid.UUID) *Price {
	return &Price{
		ID:      uuid.New(),
		AssetID: assetID,
		Date:    DateOf(q.Date),
		Price:   q.Price,
		Open:    q.Open,
		High:    q.High,
		Low:     q.Low,
		Volume:  q.Volume,
		Source:  q.Source,
	}
}

// DateOf truncates t to midnight UTC of its calendar day in t's location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar day
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
