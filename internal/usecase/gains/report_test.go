package gains

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGainReport(t *testing.T) {
	// t0 is 2024-01-10
	b1 := buy(0, "1.0", "3000000")
	b2 := buy(1, "1.0", "4000000")
	s1 := sell(24, "0.5", "2500000")
	s1.Exchange = "bitFlyer"
	s2 := sell(48, "1.0", "6000000")
	// Cannot be matched: only 0.5 BTC left
	s3 := sell(72, "2.0", "12000000")
	// Next year, must not appear
	s4 := sell(24*400, "0.1", "1000000")
	service := newService(b1, b2, s1, s2, s3, s4)

	report, err := service.GenerateGainReport(context.Background(), 2024, domain.CostBasisFIFO)

	require.NoError(t, err)
	assert.Equal(t, 2024, report.Year)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Rows, 2)

	assert.Equal(t, "2024-01-11", report.Rows[0].Date)
	assert.Equal(t, "bitFlyer", report.Rows[0].Exchange)
	assertDecimal(t, "1500000", report.Rows[0].CostBasis)
	assertDecimal(t, "1000000", report.Rows[0].RealizedGain)

	assert.Equal(t, "Unknown", report.Rows[1].Exchange)
	assertDecimal(t, "3500000", report.Rows[1].CostBasis)
	assertDecimal(t, "2500000", report.Rows[1].RealizedGain)

	require.NotNil(t, report.Total)
	assert.Equal(t, TotalLabel, report.Total.Date)
	assertDecimal(t, "1.5", report.Total.Amount)
	assertDecimal(t, "8500000", report.Total.GrossProceeds)
	assertDecimal(t, "5000000", report.Total.CostBasis)
	assertDecimal(t, "3500000", report.Total.RealizedGain)
	assert.Equal(t, domain.CostBasisFIFO, report.Total.Method)
	assert.Len(t, report.AllRows(), 3)
}

func TestGenerateGainReport_EmptyYear(t *testing.T) {
	service := newService(buy(0, "1.0", "3000000"))

	report, err := service.GenerateGainReport(context.Background(), 2023, domain.CostBasisHIFO)

	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.Nil(t, report.Total)
	assert.Empty(t, report.AllRows())
}

func TestGenerateGainReport_YearBoundaryFollowsLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	b := buy(0, "1.0", "3000000")
	// 2024-12-31 20:00 UTC is already 2025-01-01 in Tokyo
	s := sell(0, "0.5", "2000000")
	s.Timestamp = time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	service := NewGainService(&fakeTradeRepository{trades: []*domain.Trade{b, s}}, tokyo, zerolog.Nop())

	report2024, err := service.GenerateGainReport(context.Background(), 2024, domain.CostBasisFIFO)
	require.NoError(t, err)
	assert.Empty(t, report2024.Rows)

	report2025, err := service.GenerateGainReport(context.Background(), 2025, domain.CostBasisFIFO)
	require.NoError(t, err)
	require.Len(t, report2025.Rows, 1)
	assert.Equal(t, "2025-01-01", report2025.Rows[0].Date)
}
