package domain

import "errors"

var (
	// ErrInvalidTradeDirection is returned when a gain is requested for a trade that is not a sell
	ErrInvalidTradeDirection = errors.New("not a sell trade")

	// ErrNoPriorBuys is returned when no buy precedes the sell being cost-based
	ErrNoPriorBuys = errors.New("no buy trades found before this sell")

	// ErrInsufficientLots is returned when prior buys cannot cover the whole sell amount
	ErrInsufficientLots = errors.New("insufficient buy trades to match sell")

	// ErrPriceUnavailable is returned when no price can be resolved for an asset
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrRateUnavailable is returned when no FX rate exists for a currency pair
	ErrRateUnavailable = errors.New("rate unavailable")

	// ErrNotFound is returned by repositories when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateTxID is returned when a trade reuses an existing external transaction id
	ErrDuplicateTxID = errors.New("trade with this txid already exists")

	// ErrSnapshotExists is returned when a snapshot is inserted for a date that already has one
	ErrSnapshotExists = errors.New("snapshot already exists for date")
)
