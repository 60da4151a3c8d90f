package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simaogato/assetledger-backend/internal/domain"
)

const snapshotColumns = `id, date, total_base, total_usd, total_btc, by_asset_class, by_currency, by_account_type, fx_rates, created_at`

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Exists reports whether a snapshot is stored for date
func (r *snapshotRepository) Exists(ctx context.Context, date time.Time) (bool, error) {
	var count int
	err := r.db.queryRow(ctx, `SELECT COUNT(*) FROM valuation_snapshots WHERE date = ?`, formatDate(date)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	return count > 0, nil
}

// Create inserts a snapshot. Returns ErrSnapshotExists if the date is taken.
func (r *snapshotRepository) Create(ctx context.Context, snapshot *domain.Snapshot) error {
	byAssetClass, err := encodeJSON("by_asset_class", snapshot.ByAssetClass)
	if err != nil {
		return err
	}
	byCurrency, err := encodeJSON("by_currency", snapshot.ByCurrency)
	if err != nil {
		return err
	}
	byAccountType, err := encodeJSON("by_account_type", snapshot.ByAccountType)
	if err != nil {
		return err
	}
	fxRates, err := encodeJSON("fx_rates", snapshot.FXRates)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO valuation_snapshots (` + snapshotColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date) DO NOTHING
	`

	result, err := r.db.exec(ctx, query,
		snapshot.ID.String(),
		formatDate(snapshot.Date),
		snapshot.TotalBase.String(),
		snapshot.TotalUSD.String(),
		snapshot.TotalBTC.String(),
		byAssetClass,
		byCurrency,
		byAccountType,
		fxRates,
		formatTimestamp(snapshot.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSnapshotExists, formatDate(snapshot.Date))
	}

	return nil
}

// GetByDate retrieves the snapshot for date
func (r *snapshotRepository) GetByDate(ctx context.Context, date time.Time) (*domain.Snapshot, error) {
	row := r.db.queryRow(ctx, `SELECT `+snapshotColumns+` FROM valuation_snapshots WHERE date = ?`, formatDate(date))
	snapshot, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot for %s: %w", formatDate(date), domain.ErrNotFound)
		}
		return nil, err
	}
	return snapshot, nil
}

// Latest retrieves the most recent snapshot
func (r *snapshotRepository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	row := r.db.queryRow(ctx, `SELECT `+snapshotColumns+` FROM valuation_snapshots ORDER BY date DESC LIMIT 1`)
	snapshot, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no snapshot stored: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return snapshot, nil
}

// ListSince retrieves snapshots dated on or after date, oldest first
func (r *snapshotRepository) ListSince(ctx context.Context, date time.Time) ([]*domain.Snapshot, error) {
	rows, err := r.db.query(ctx,
		`SELECT `+snapshotColumns+` FROM valuation_snapshots WHERE date >= ? ORDER BY date ASC`,
		formatDate(date),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

func scanSnapshot(row rowScanner) (*domain.Snapshot, error) {
	var s domain.Snapshot
	var date, totalBase, totalUSD, totalBTC, createdAt string
	var byAssetClass, byCurrency, byAccountType, fxRates string

	err := row.Scan(
		&s.ID,
		&date,
		&totalBase,
		&totalUSD,
		&totalBTC,
		&byAssetClass,
		&byCurrency,
		&byAccountType,
		&fxRates,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if s.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if s.TotalBase, err = parseDecimal("total_base", totalBase); err != nil {
		return nil, err
	}
	if s.TotalUSD, err = parseDecimal("total_usd", totalUSD); err != nil {
		return nil, err
	}
	if s.TotalBTC, err = parseDecimal("total_btc", totalBTC); err != nil {
		return nil, err
	}

	s.ByAssetClass = domain.Breakdown{}
	s.ByCurrency = domain.Breakdown{}
	s.ByAccountType = domain.Breakdown{}
	s.FXRates = domain.FXRates{}
	if err := decodeJSON("by_asset_class", byAssetClass, &s.ByAssetClass); err != nil {
		return nil, err
	}
	if err := decodeJSON("by_currency", byCurrency, &s.ByCurrency); err != nil {
		return nil, err
	}
	if err := decodeJSON("by_account_type", byAccountType, &s.ByAccountType); err != nil {
		return nil, err
	}
	if err := decodeJSON("fx_rates", fxRates, &s.FXRates); err != nil {
		return nil, err
	}

	return &s, nil
}
