package gains

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// TotalLabel marks the summary row of a gain report
const TotalLabel = "TOTAL"

// ReportRow is one line of the annual gain report
type ReportRow struct {
	Date          string
	Amount        decimal.Decimal
	GrossProceeds decimal.Decimal
	CostBasis     decimal.Decimal
	RealizedGain  decimal.Decimal
	Exchange      string
	Method        domain.CostBasisMethod
}

// GainReport is the tabular realized gain report for one calendar year
type GainReport struct {
	Year    int
	Method  domain.CostBasisMethod
	Rows    []ReportRow
	Total   *ReportRow // nil when the year has no reportable sells
	Skipped int        // sells whose gain could not be calculated
}

// ReportSink consumes a finished gain report (CSV export, terminal table)
type ReportSink interface {
	Write(report *GainReport) error
}

// AllRows returns the rows followed by the total row, if any
func (r *GainReport) AllRows() []ReportRow {
	rows := make([]ReportRow, 0, len(r.Rows)+1)
	rows = append(rows, r.Rows...)
	if r.Total != nil {
		rows = append(rows, *r.Total)
	}
	return rows
}

// GenerateGainReport calculates every sell of the year and sums them up
// A sell whose gain cannot be calculated is logged and left out of the report.
func (s *GainService) GenerateGainReport(ctx context.Context, year int, method domain.CostBasisMethod) (*GainReport, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.Location)
	next := from.AddDate(1, 0, 0)

	sells, err := s.TradeRepo.List(ctx, domain.TradeFilter{Side: domain.SideSell, From: from, Before: next})
	if err != nil {
		return nil, fmt.Errorf("failed to list sells for %d: %w", year, err)
	}

	report := &GainReport{
		Year:   year,
		Method: method,
		Rows:   make([]ReportRow, 0, len(sells)),
	}

	for _, sell := range sells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.CalculateRealizedGain(ctx, sell, method)
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("trade_id", sell.ID.String()).
				Int("year", year).
				Msg("Skipping sell in gain report")
			report.Skipped++
			continue
		}

		exchange := sell.Exchange
		if exchange == "" {
			exchange = "Unknown"
		}

		report.Rows = append(report.Rows, ReportRow{
			Date:          sell.Timestamp.In(s.Location).Format("2006-01-02"),
			Amount:        result.SellAmount,
			GrossProceeds: result.GrossProceeds,
			CostBasis:     result.CostBasis,
			RealizedGain:  result.RealizedGain,
			Exchange:      exchange,
			Method:        method,
		})
	}

	if len(report.Rows) > 0 {
		total := ReportRow{Date: TotalLabel, Method: method}
		for _, row := range report.Rows {
			total.Amount = total.Amount.Add(row.Amount)
			total.GrossProceeds = total.GrossProceeds.Add(row.GrossProceeds)
			total.CostBasis = total.CostBasis.Add(row.CostBasis)
			total.RealizedGain = total.RealizedGain.Add(row.RealizedGain)
		}
		report.Total = &total
	}

	return report, nil
}
