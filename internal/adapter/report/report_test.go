package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/simaogato/assetledger-backend/internal/usecase/gains"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleReport() *gains.GainReport {
	rows := []gains.ReportRow{
		{
			Date:          "2024-03-10",
			Amount:        dec("0.5"),
			GrossProceeds: dec("4500000"),
			CostBasis:     dec("2500000"),
			RealizedGain:  dec("2000000"),
			Exchange:      "bitFlyer",
			Method:        domain.CostBasisFIFO,
		},
		{
			Date:          "2024-07-01",
			Amount:        dec("0.25"),
			GrossProceeds: dec("2500000"),
			CostBasis:     dec("1250000"),
			RealizedGain:  dec("1250000"),
			Exchange:      "Unknown",
			Method:        domain.CostBasisFIFO,
		},
	}
	return &gains.GainReport{
		Year:   2024,
		Method: domain.CostBasisFIFO,
		Rows:   rows,
		Total: &gains.ReportRow{
			Date:          gains.TotalLabel,
			Amount:        dec("0.75"),
			GrossProceeds: dec("7000000"),
			CostBasis:     dec("3750000"),
			RealizedGain:  dec("3250000"),
			Method:        domain.CostBasisFIFO,
		},
		Skipped: 1,
	}
}

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVSink(&buf, "JPY").Write(sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{
		"Date", "Amount (BTC)", "Gross Proceeds (JPY)", "Cost Basis (JPY)", "Realized Gain (JPY)", "Exchange", "Method",
	}, records[0])
	assert.Equal(t, []string{"2024-03-10", "0.5", "4500000", "2500000", "2000000", "bitFlyer", "FIFO"}, records[1])
	assert.Equal(t, []string{"TOTAL", "0.75", "7000000", "3750000", "3250000", "", "FIFO"}, records[3])
}

func TestCSVSink_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVSink(&buf, "USD").Write(&gains.GainReport{Year: 2023, Method: domain.CostBasisHIFO}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Realized Gain (USD)")
}

func TestMarkdownSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownSink(&buf, "jpy").Write(sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "# Realized BTC Gains 2024")
	assert.Contains(t, out, "Method: FIFO")
	assert.Contains(t, out, "| 2024-03-10 | 0.50000000 |")
	assert.Contains(t, out, "4,500,000")
	assert.Contains(t, out, "| **TOTAL** | **0.75000000** |")
	assert.Contains(t, out, "3,250,000")
	assert.Contains(t, out, "1 sell(s) could not be matched")
}

func TestMarkdownSink_NoSells(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownSink(&buf, "JPY").Write(&gains.GainReport{Year: 2022, Method: domain.CostBasisHIFO}))

	assert.Contains(t, buf.String(), "No sells in this year.")
	assert.NotContains(t, buf.String(), "|")
}

func TestMarkdownSink_UnknownCurrency(t *testing.T) {
	sink := NewMarkdownSink(&bytes.Buffer{}, "XXXX")
	assert.Equal(t, "12.50 XXXX", sink.format(dec("12.5")))
}
