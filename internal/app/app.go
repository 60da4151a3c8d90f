package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/assetledger-backend/internal/adapter/pricesource"
	"github.com/simaogato/assetledger-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/assetledger-backend/internal/config"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/simaogato/assetledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/assetledger-backend/internal/usecase/gains"
	"github.com/simaogato/assetledger-backend/internal/usecase/holdings"
	"github.com/simaogato/assetledger-backend/internal/usecase/pricing"
	"github.com/simaogato/assetledger-backend/internal/usecase/seeder"
	"github.com/simaogato/assetledger-backend/internal/usecase/trades"
	"github.com/simaogato/assetledger-backend/internal/usecase/valuation"
)

// connectAttempts and connectDelay give a database container time to come up
const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

// App holds the wired services shared by the server and the CLI
type App struct {
	DB *sqlstore.DB

	GainService      *gains.GainService
	ValuationService *valuation.ValuationService
	DashboardService *dashboard.DashboardService
	TradeService     *trades.TradeService
	HoldingService   *holdings.HoldingService
	RefreshService   *pricing.RefreshService
}

// Sources overrides the external price and rate sources, for tests
type Sources struct {
	Prices domain.PriceSource
	Rates  domain.RateSource
}

// New connects the database, creates the schema, seeds the system records
// and wires every service
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, sources *Sources) (*App, error) {
	// 1. Setup Database
	db, err := connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// 2. Initialize Repositories
	tradeRepo := sqlstore.NewTradeRepository(db)
	assetRepo := sqlstore.NewAssetRepository(db)
	ownerRepo := sqlstore.NewOwnerRepository(db)
	holdingRepo := sqlstore.NewHoldingRepository(db)
	priceRepo := sqlstore.NewPriceRepository(db)
	snapshotRepo := sqlstore.NewSnapshotRepository(db)

	// 3. External price and rate sources
	if sources == nil {
		prices, rates := pricesource.New(cfg.PriceSourceConfig(), log)
		sources = &Sources{Prices: prices, Rates: rates}
	}

	// 4. Initialize Services (Use Cases)
	valuationService := valuation.NewValuationService(
		holdingRepo, priceRepo, snapshotRepo, tradeRepo,
		sources.Prices, sources.Rates,
		valuation.Options{
			BaseCurrency:    cfg.BaseCurrency,
			FallbackUSDRate: cfg.FallbackUSDRate,
			Location:        cfg.Location,
		},
		log,
	)

	a := &App{
		DB:               db,
		GainService:      gains.NewGainService(tradeRepo, cfg.Location, log),
		ValuationService: valuationService,
		DashboardService: dashboard.NewDashboardService(snapshotRepo, valuationService),
		TradeService:     trades.NewTradeService(tradeRepo, log),
		HoldingService:   holdings.NewHoldingService(assetRepo, ownerRepo, holdingRepo, log),
		RefreshService:   pricing.NewRefreshService(assetRepo, priceRepo, sources.Prices, cfg.Location, log),
	}

	// 5. Seed the system owner and the bitcoin asset
	if err := seeder.NewSystemSeeder(ownerRepo, assetRepo, cfg.BaseCurrency).Seed(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed system records: %w", err)
	}

	return a, nil
}

// Close releases the database connection
func (a *App) Close() error {
	return a.DB.Close()
}

func connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sqlstore.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := sqlstore.NewDB(cfg.DBDriver, cfg.DBConnStr)
		if err == nil {
			return db, nil
		}
		lastErr = err
		if attempt == connectAttempts {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("Database not ready, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to database: %w", lastErr)
}
