package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

const assetColumns = `a.id, a.symbol, a.name, a.asset_class, a.asset_type, a.region, a.sub_category, a.currency, a.exchange, a.isin`

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// GetByID retrieves an asset by its ID
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	row := r.db.queryRow(ctx, `SELECT `+assetColumns+` FROM assets a WHERE a.id = ?`, id.String())

	var a assetRow
	if err := row.Scan(a.fields()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return a.toAsset(), nil
}

// List retrieves all assets ordered by name
func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	rows, err := r.db.query(ctx, `SELECT `+assetColumns+` FROM assets a ORDER BY a.name, a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		var a assetRow
		if err := rows.Scan(a.fields()...); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a.toAsset())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}

// Create creates a new asset
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, symbol, name, asset_class, asset_type, region, sub_category, currency, exchange, isin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	c := asset.Classification
	_, err := r.db.exec(ctx, query,
		asset.ID.String(),
		asset.Symbol,
		asset.Name,
		string(c.AssetClass),
		nullableString((*string)(c.AssetType)),
		nullableString((*string)(c.Region)),
		nullableString(c.SubCategory),
		asset.Currency,
		asset.Exchange,
		asset.ISIN,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// assetRow holds one scanned assets row until its classification is assembled
type assetRow struct {
	asset       domain.Asset
	assetClass  string
	assetType   sql.NullString
	region      sql.NullString
	subCategory sql.NullString
}

// fields returns scan destinations matching assetColumns
func (a *assetRow) fields() []any {
	return []any{
		&a.asset.ID,
		&a.asset.Symbol,
		&a.asset.Name,
		&a.assetClass,
		&a.assetType,
		&a.region,
		&a.subCategory,
		&a.asset.Currency,
		&a.asset.Exchange,
		&a.asset.ISIN,
	}
}

func (a *assetRow) toAsset() *domain.Asset {
	asset := a.asset
	asset.Classification = domain.Classification{
		AssetClass:  domain.AssetClass(a.assetClass),
		SubCategory: stringPtr(a.subCategory),
	}
	if a.assetType.Valid {
		t := domain.AssetType(a.assetType.String)
		asset.Classification.AssetType = &t
	}
	if a.region.Valid {
		r := domain.Region(a.region.String)
		asset.Classification.Region = &r
	}
	return &asset
}
