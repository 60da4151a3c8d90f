package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/assetledger-backend/internal/config"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/simaogato/assetledger-backend/internal/usecase/seeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noSource struct{}

func (noSource) FetchQuote(ctx context.Context, asset *domain.Asset) (*domain.Quote, error) {
	return nil, domain.ErrPriceUnavailable
}

func (noSource) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	return decimal.Zero, domain.ErrRateUnavailable
}

func (noSource) FetchBTCRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	return decimal.Zero, domain.ErrRateUnavailable
}

func testConfig() *config.Config {
	return &config.Config{
		DBDriver:        sqlstore.DriverSQLite,
		DBConnStr:       ":memory:",
		BaseCurrency:    "JPY",
		FallbackUSDRate: decimal.NewFromInt(150),
		Location:        time.UTC,
	}
}

func TestNew_WiresAndSeeds(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, testConfig(), zerolog.Nop(), &Sources{Prices: noSource{}, Rates: noSource{}})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	bitcoin, err := sqlstore.NewAssetRepository(a.DB).GetByID(ctx, seeder.SYS_ASSET_BITCOIN)
	require.NoError(t, err)
	assert.True(t, bitcoin.IsCrypto())
	assert.Equal(t, "JPY", bitcoin.Currency)

	// The seeded bitcoin asset has no price and no holding: the refresh counts
	// one failure and the snapshot is empty
	result, err := a.RefreshService.RefreshDailyPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	overview, err := a.DashboardService.GetOverview(ctx, 7)
	require.NoError(t, err)
	assert.True(t, overview.Latest.TotalBase.IsZero())
	assert.Len(t, overview.History, 1)
}

func TestNew_UnreachableDatabase(t *testing.T) {
	cfg := testConfig()
	cfg.DBDriver = "mysql"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, cfg, zerolog.Nop(), nil)
	assert.Error(t, err)
}
