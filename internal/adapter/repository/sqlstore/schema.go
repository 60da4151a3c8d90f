package sqlstore

import (
	"context"
	"fmt"
)

// Every column is TEXT so the same DDL runs on postgres and sqlite.
// Timestamps and dates use fixed-width layouts and sort lexically.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS owners (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner_type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		asset_class TEXT NOT NULL,
		asset_type TEXT,
		region TEXT,
		sub_category TEXT,
		currency TEXT NOT NULL,
		exchange TEXT NOT NULL DEFAULT '',
		isin TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS holdings (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL REFERENCES assets(id),
		owner_id TEXT NOT NULL REFERENCES owners(id),
		quantity TEXT NOT NULL,
		cost_total TEXT NOT NULL,
		acquisition_date TEXT,
		account_type TEXT NOT NULL,
		broker TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS prices (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL REFERENCES assets(id),
		date TEXT NOT NULL,
		price TEXT NOT NULL,
		open TEXT,
		high TEXT,
		low TEXT,
		volume TEXT,
		source TEXT NOT NULL DEFAULT '',
		UNIQUE (asset_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS btc_trades (
		id TEXT PRIMARY KEY,
		txid TEXT UNIQUE,
		amount_btc TEXT NOT NULL,
		side TEXT NOT NULL,
		counter_value TEXT NOT NULL,
		rate TEXT NOT NULL,
		fee_btc TEXT NOT NULL,
		fee_base TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		exchange TEXT NOT NULL DEFAULT '',
		trade_type TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_btc_trades_timestamp ON btc_trades (timestamp)`,
	`CREATE TABLE IF NOT EXISTS valuation_snapshots (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		total_base TEXT NOT NULL,
		total_usd TEXT NOT NULL,
		total_btc TEXT NOT NULL,
		by_asset_class TEXT NOT NULL,
		by_currency TEXT NOT NULL,
		by_account_type TEXT NOT NULL,
		fx_rates TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
}

// EnsureSchema creates the tables when they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
