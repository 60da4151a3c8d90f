package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/simaogato/assetledger-backend/internal/usecase/gains"
)

var _ gains.ReportSink = (*CSVSink)(nil)

// CSVSink writes a gain report as CSV, one row per sell plus the TOTAL row
type CSVSink struct {
	w        io.Writer
	currency string
}

// NewCSVSink creates a CSV sink; currency labels the base currency columns
func NewCSVSink(w io.Writer, currency string) *CSVSink {
	return &CSVSink{w: w, currency: currency}
}

// Header returns the column names of the report
func (s *CSVSink) Header() []string {
	return []string{
		"Date",
		"Amount (BTC)",
		fmt.Sprintf("Gross Proceeds (%s)", s.currency),
		fmt.Sprintf("Cost Basis (%s)", s.currency),
		fmt.Sprintf("Realized Gain (%s)", s.currency),
		"Exchange",
		"Method",
	}
}

// Write emits the header and every row of report
func (s *CSVSink) Write(report *gains.GainReport) error {
	w := csv.NewWriter(s.w)

	if err := w.Write(s.Header()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range report.AllRows() {
		record := []string{
			row.Date,
			row.Amount.String(),
			row.GrossProceeds.String(),
			row.CostBasis.String(),
			row.RealizedGain.String(),
			row.Exchange,
			string(row.Method),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
