package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// DefaultHistoryDays is how far back the overview history reaches
const DefaultHistoryDays = 365

var hundred = decimal.NewFromInt(100)

// SnapshotRecorder produces and stores the snapshot for a date
type SnapshotRecorder interface {
	RecordDailySnapshot(ctx context.Context, date time.Time) (*domain.Snapshot, error)
	Today() time.Time
}

// HistoryPoint is one day of the valuation history chart
type HistoryPoint struct {
	Date      time.Time
	TotalBase decimal.Decimal
	TotalUSD  decimal.Decimal
	TotalBTC  decimal.Decimal
}

// OverviewResult represents the dashboard headline figures
type OverviewResult struct {
	Latest           *domain.Snapshot
	Change24h        decimal.Decimal
	ChangePercentage decimal.Decimal
	Allocation       map[string]decimal.Decimal // asset class share of TotalBase, in percent
	History          []HistoryPoint
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	SnapshotRepo domain.SnapshotRepository
	Recorder     SnapshotRecorder
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(snapshotRepo domain.SnapshotRepository, recorder SnapshotRecorder) *DashboardService {
	return &DashboardService{
		SnapshotRepo: snapshotRepo,
		Recorder:     recorder,
	}
}

// GetOverview summarises the latest snapshot
// Logic:
//   - Latest: most recent stored snapshot, calculated and stored for today when none exists
//   - Change24h: Latest.TotalBase minus the snapshot of the day before, zero without one
//   - ChangePercentage: Change24h relative to the previous total, zero when it is not positive
//   - History: snapshots of the last historyDays days, oldest first
func (s *DashboardService) GetOverview(ctx context.Context, historyDays int) (*OverviewResult, error) {
	latest, err := s.latestSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := &OverviewResult{
		Latest:     latest,
		Allocation: allocation(latest),
	}

	previous, err := s.SnapshotRepo.GetByDate(ctx, latest.Date.AddDate(0, 0, -1))
	switch {
	case err == nil:
		result.Change24h = latest.TotalBase.Sub(previous.TotalBase)
		if previous.TotalBase.IsPositive() {
			result.ChangePercentage = result.Change24h.Div(previous.TotalBase).Mul(hundred)
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to get previous snapshot: %w", err)
	}

	history, err := s.History(ctx, historyDays)
	if err != nil {
		return nil, err
	}
	result.History = history

	return result, nil
}

// History returns the valuation totals of the last days days, oldest first
func (s *DashboardService) History(ctx context.Context, days int) ([]HistoryPoint, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	since := s.Recorder.Today().AddDate(0, 0, -days)

	snapshots, err := s.SnapshotRepo.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	points := make([]HistoryPoint, 0, len(snapshots))
	for _, snapshot := range snapshots {
		points = append(points, HistoryPoint{
			Date:      snapshot.Date,
			TotalBase: snapshot.TotalBase,
			TotalUSD:  snapshot.TotalUSD,
			TotalBTC:  snapshot.TotalBTC,
		})
	}
	return points, nil
}

func (s *DashboardService) latestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	latest, err := s.SnapshotRepo.Latest(ctx)
	if err == nil {
		return latest, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	// No snapshot yet: value the portfolio now
	today := s.Recorder.Today()
	latest, err = s.Recorder.RecordDailySnapshot(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate snapshot: %w", err)
	}
	if latest != nil {
		return latest, nil
	}

	// Stored concurrently between the two calls
	return s.SnapshotRepo.GetByDate(ctx, today)
}

func allocation(snapshot *domain.Snapshot) map[string]decimal.Decimal {
	shares := make(map[string]decimal.Decimal, len(snapshot.ByAssetClass))
	for class, value := range snapshot.ByAssetClass {
		if snapshot.TotalBase.IsPositive() {
			shares[class] = value.Div(snapshot.TotalBase).Mul(hundred)
		} else {
			shares[class] = decimal.Zero
		}
	}
	return shares
}
