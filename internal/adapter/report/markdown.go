package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/usecase/gains"
)

var _ gains.ReportSink = (*MarkdownSink)(nil)

// MarkdownSink renders a gain report as a markdown document
type MarkdownSink struct {
	w        io.Writer
	currency string
}

// NewMarkdownSink creates a markdown sink formatting amounts in currency
func NewMarkdownSink(w io.Writer, currency string) *MarkdownSink {
	return &MarkdownSink{w: w, currency: strings.ToUpper(currency)}
}

// Write renders the report title, the table and the skipped count
func (s *MarkdownSink) Write(report *gains.GainReport) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Realized BTC Gains %d\n\n", report.Year)
	fmt.Fprintf(&b, "Method: %s\n\n", report.Method)

	if len(report.Rows) == 0 {
		fmt.Fprintln(&b, "No sells in this year.")
	} else {
		fmt.Fprintln(&b, "| Date | Amount (BTC) | Gross Proceeds | Cost Basis | Realized Gain | Exchange |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|:---|")
		for _, row := range report.Rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				row.Date,
				row.Amount.StringFixed(8),
				s.format(row.GrossProceeds),
				s.format(row.CostBasis),
				s.format(row.RealizedGain),
				row.Exchange,
			)
		}
		if total := report.Total; total != nil {
			fmt.Fprintf(&b, "| **%s** | **%s** | **%s** | **%s** | **%s** | |\n",
				total.Date,
				total.Amount.StringFixed(8),
				s.format(total.GrossProceeds),
				s.format(total.CostBasis),
				s.format(total.RealizedGain),
			)
		}
	}

	if report.Skipped > 0 {
		fmt.Fprintf(&b, "\n%d sell(s) could not be matched and are not included.\n", report.Skipped)
	}

	_, err := io.WriteString(s.w, b.String())
	return err
}

// format displays amount with the currency's symbol and minor units
// Unknown currencies fall back to a plain two-decimal number.
func (s *MarkdownSink) format(amount decimal.Decimal) string {
	currency := money.GetCurrency(s.currency)
	if currency == nil {
		return amount.StringFixed(2) + " " + s.currency
	}
	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, s.currency).Display()
}
