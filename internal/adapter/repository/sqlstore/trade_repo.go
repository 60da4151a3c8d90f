package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

const tradeColumns = `id, txid, amount_btc, counter_value, rate, fee_btc, fee_base, timestamp, exchange, trade_type, notes`

// tradeRepository implements domain.TradeRepository
type tradeRepository struct {
	db  *DB
	now func() time.Time
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *DB) domain.TradeRepository {
	return &tradeRepository{db: db, now: time.Now}
}

// List retrieves trades matching the filter, oldest first
// Trades sharing a timestamp keep their insertion order.
func (r *tradeRepository) List(ctx context.Context, filter domain.TradeFilter) ([]*domain.Trade, error) {
	var (
		where []string
		args  []any
	)

	switch filter.Side {
	case domain.SideBuy:
		where = append(where, "side = ?")
		args = append(args, "buy")
	case domain.SideSell:
		where = append(where, "side = ?")
		args = append(args, "sell")
	}
	if !filter.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, formatTimestamp(filter.From))
	}
	if !filter.Until.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, formatTimestamp(filter.Until))
	}
	if !filter.Before.IsZero() {
		where = append(where, "timestamp < ?")
		args = append(args, formatTimestamp(filter.Before))
	}

	query := `SELECT ` + tradeColumns + ` FROM btc_trades`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY timestamp ASC, created_at ASC`

	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}

	return trades, nil
}

// GetByID retrieves a trade by its ID
func (r *tradeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trade, error) {
	row := r.db.queryRow(ctx, `SELECT `+tradeColumns+` FROM btc_trades WHERE id = ?`, id.String())
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("trade %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return trade, nil
}

// GetByTxID retrieves a trade by its external transaction ID
func (r *tradeRepository) GetByTxID(ctx context.Context, txID string) (*domain.Trade, error) {
	row := r.db.queryRow(ctx, `SELECT `+tradeColumns+` FROM btc_trades WHERE txid = ?`, txID)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("trade with txid %s: %w", txID, domain.ErrNotFound)
		}
		return nil, err
	}
	return trade, nil
}

// Create creates a new trade
// Returns ErrDuplicateTxID if the txid is already stored.
func (r *tradeRepository) Create(ctx context.Context, trade *domain.Trade) error {
	side := "sell"
	if trade.IsBuy() {
		side = "buy"
	}

	query := `
		INSERT INTO btc_trades (id, txid, amount_btc, side, counter_value, rate, fee_btc, fee_base,
			timestamp, exchange, trade_type, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (txid) DO NOTHING
	`

	result, err := r.db.exec(ctx, query,
		trade.ID.String(),
		nullableString(trade.TxID),
		trade.Amount.String(),
		side,
		trade.CounterValue.String(),
		trade.Rate.String(),
		trade.FeeBTC.String(),
		trade.FeeBase.String(),
		formatTimestamp(trade.Timestamp),
		trade.Exchange,
		string(trade.Type),
		trade.Notes,
		formatTimestamp(r.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	if affected == 0 {
		return domain.ErrDuplicateTxID
	}

	return nil
}

// Delete removes a trade
func (r *tradeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.exec(ctx, `DELETE FROM btc_trades WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("trade %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (*domain.Trade, error) {
	var trade domain.Trade
	var txID sql.NullString
	var amount, counterValue, rate, feeBTC, feeBase, timestamp, tradeType string

	err := row.Scan(
		&trade.ID,
		&txID,
		&amount,
		&counterValue,
		&rate,
		&feeBTC,
		&feeBase,
		&timestamp,
		&trade.Exchange,
		&tradeType,
		&trade.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}

	trade.TxID = stringPtr(txID)
	trade.Type = domain.TradeType(tradeType)

	if trade.Amount, err = parseDecimal("amount_btc", amount); err != nil {
		return nil, err
	}
	if trade.CounterValue, err = parseDecimal("counter_value", counterValue); err != nil {
		return nil, err
	}
	if trade.Rate, err = parseDecimal("rate", rate); err != nil {
		return nil, err
	}
	if trade.FeeBTC, err = parseDecimal("fee_btc", feeBTC); err != nil {
		return nil, err
	}
	if trade.FeeBase, err = parseDecimal("fee_base", feeBase); err != nil {
		return nil, err
	}
	if trade.Timestamp, err = parseTimestamp(timestamp); err != nil {
		return nil, err
	}

	return &trade, nil
}
