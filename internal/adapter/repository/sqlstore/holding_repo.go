package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simaogato/assetledger-backend/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// List retrieves all holdings with their asset and owner in one query
func (r *holdingRepository) List(ctx context.Context) ([]*domain.Holding, error) {
	query := `
		SELECT h.id, h.quantity, h.cost_total, h.acquisition_date, h.account_type, h.broker, h.notes,
			o.id, o.name, o.owner_type,
			` + assetColumns + `
		FROM holdings h
		JOIN assets a ON a.id = h.asset_id
		JOIN owners o ON o.id = h.owner_id
		ORDER BY a.name, h.id
	`

	rows, err := r.db.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		var holding domain.Holding
		var quantity, costTotal, accountType, ownerType string
		var acquisitionDate sql.NullString
		var a assetRow

		dest := []any{
			&holding.ID,
			&quantity,
			&costTotal,
			&acquisitionDate,
			&accountType,
			&holding.Broker,
			&holding.Notes,
			&holding.Owner.ID,
			&holding.Owner.Name,
			&ownerType,
		}
		dest = append(dest, a.fields()...)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		holding.Asset = *a.toAsset()
		holding.Owner.OwnerType = domain.OwnerType(ownerType)
		holding.AccountType = domain.AccountType(accountType)

		if holding.Quantity, err = parseDecimal("quantity", quantity); err != nil {
			return nil, err
		}
		if holding.CostTotal, err = parseDecimal("cost_total", costTotal); err != nil {
			return nil, err
		}
		if acquisitionDate.Valid {
			if holding.AcquisitionDate, err = parseDate(acquisitionDate.String); err != nil {
				return nil, err
			}
		}

		holdings = append(holdings, &holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// Create creates a new holding
func (r *holdingRepository) Create(ctx context.Context, holding *domain.Holding) error {
	query := `
		INSERT INTO holdings (id, asset_id, owner_id, quantity, cost_total, acquisition_date, account_type, broker, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var acquisitionDate sql.NullString
	if !holding.AcquisitionDate.IsZero() {
		acquisitionDate = sql.NullString{String: formatDate(holding.AcquisitionDate), Valid: true}
	}

	_, err := r.db.exec(ctx, query,
		holding.ID.String(),
		holding.Asset.ID.String(),
		holding.Owner.ID.String(),
		holding.Quantity.String(),
		holding.CostTotal.String(),
		acquisitionDate,
		string(holding.AccountType),
		holding.Broker,
		holding.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}

	return nil
}
