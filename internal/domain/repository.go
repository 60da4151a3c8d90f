package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TradeRepository defines the interface for BTC trade persistence operations
type TradeRepository interface {
	// List retrieves trades matching the filter, ordered by timestamp ascending
	List(ctx context.Context, filter TradeFilter) ([]*Trade, error)

	// GetByID retrieves a trade by its ID
	// Returns ErrNotFound if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Trade, error)

	// GetByTxID retrieves a trade by its external transaction ID
	// Returns ErrNotFound if it does not exist
	GetByTxID(ctx context.Context, txID string) (*Trade, error)

	// Create creates a new trade
	Create(ctx context.Context, trade *Trade) error

	// Delete removes a trade (administrative correction only)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HoldingRepository defines the interface for holding persistence operations
type HoldingRepository interface {
	// List retrieves all holdings with their Asset and Owner populated
	List(ctx context.Context) ([]*Holding, error)

	// Create creates a new holding referencing an existing asset and owner
	Create(ctx context.Context, holding *Holding) error
}

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	// GetByID retrieves an asset by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// List retrieves all assets
	List(ctx context.Context) ([]*Asset, error)

	// Create creates a new asset
	Create(ctx context.Context, asset *Asset) error
}

// OwnerRepository defines the interface for owner persistence operations
type OwnerRepository interface {
	// GetByID retrieves an owner by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Owner, error)

	// Create creates a new owner
	Create(ctx context.Context, owner *Owner) error
}

// PriceRepository defines the interface for daily price history persistence
type PriceRepository interface {
	// LatestOnOrBefore retrieves the most recent price dated on or before date
	// Returns ErrNotFound if none exists
	LatestOnOrBefore(ctx context.Context, assetID uuid.UUID, date time.Time) (*Price, error)

	// Create inserts a new price. A price already stored for the same (asset, date) is kept.
	Create(ctx context.Context, price *Price) error
}

// SnapshotRepository defines the interface for valuation snapshot persistence
type SnapshotRepository interface {
	// Exists reports whether a snapshot is stored for date
	Exists(ctx context.Context, date time.Time) (bool, error)

	// Create inserts a snapshot. Returns ErrSnapshotExists if the date is taken.
	Create(ctx context.Context, snapshot *Snapshot) error

	// GetByDate retrieves the snapshot for date
	// Returns ErrNotFound if none exists
	GetByDate(ctx context.Context, date time.Time) (*Snapshot, error)

	// Latest retrieves the most recent snapshot
	// Returns ErrNotFound if none exists
	Latest(ctx context.Context) (*Snapshot, error)

	// ListSince retrieves snapshots dated on or after date, oldest first
	ListSince(ctx context.Context, date time.Time) ([]*Snapshot, error)
}
