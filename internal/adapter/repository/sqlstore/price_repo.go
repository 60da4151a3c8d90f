package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// priceRepository implements domain.PriceRepository
type priceRepository struct {
	db *DB
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *DB) domain.PriceRepository {
	return &priceRepository{db: db}
}

// LatestOnOrBefore retrieves the most recent price of an asset dated on or before date
func (r *priceRepository) LatestOnOrBefore(ctx context.Context, assetID uuid.UUID, date time.Time) (*domain.Price, error) {
	query := `
		SELECT id, asset_id, date, price, open, high, low, volume, source
		FROM prices
		WHERE asset_id = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`

	var p domain.Price
	var day, price string
	var open, high, low, volume sql.NullString

	err := r.db.queryRow(ctx, query, assetID.String(), formatDate(date)).Scan(
		&p.ID,
		&p.AssetID,
		&day,
		&price,
		&open,
		&high,
		&low,
		&volume,
		&p.Source,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no price for asset %s on or before %s: %w", assetID, formatDate(date), domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}

	if p.Date, err = parseDate(day); err != nil {
		return nil, err
	}
	if p.Price, err = parseDecimal("price", price); err != nil {
		return nil, err
	}
	if p.Open, err = parseNullableDecimal("open", open); err != nil {
		return nil, err
	}
	if p.High, err = parseNullableDecimal("high", high); err != nil {
		return nil, err
	}
	if p.Low, err = parseNullableDecimal("low", low); err != nil {
		return nil, err
	}
	if p.Volume, err = parseNullableDecimal("volume", volume); err != nil {
		return nil, err
	}

	return &p, nil
}

// Create inserts a price; an existing price for the same asset and date is kept
func (r *priceRepository) Create(ctx context.Context, price *domain.Price) error {
	query := `
		INSERT INTO prices (id, asset_id, date, price, open, high, low, volume, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (asset_id, date) DO NOTHING
	`

	_, err := r.db.exec(ctx, query,
		price.ID.String(),
		price.AssetID.String(),
		formatDate(price.Date),
		price.Price.String(),
		nullableDecimal(price.Open),
		nullableDecimal(price.High),
		nullableDecimal(price.Low),
		nullableDecimal(price.Volume),
		price.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price: %w", err)
	}

	return nil
}
