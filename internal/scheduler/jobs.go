package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/assetledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/assetledger-backend/internal/usecase/pricing"
)

// ValuationDelay is how long after the price refresh the daily snapshot is taken
const ValuationDelay = 10 * time.Minute

// PriceRefresher stores today's prices
type PriceRefresher interface {
	RefreshDailyPrices(ctx context.Context) (*pricing.RefreshResult, error)
}

// PriceRefreshJob fetches the daily price of every asset
type PriceRefreshJob struct {
	Prices PriceRefresher
	Log    zerolog.Logger
}

func (j *PriceRefreshJob) Name() string { return "price_refresh" }

func (j *PriceRefreshJob) Run(ctx context.Context) error {
	result, err := j.Prices.RefreshDailyPrices(ctx)
	if err != nil {
		return err
	}
	j.Log.Info().
		Int("fetched", result.Fetched).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Daily prices refreshed")
	return nil
}

// ValuationJob records today's valuation snapshot
type ValuationJob struct {
	Recorder dashboard.SnapshotRecorder
	Log      zerolog.Logger
}

func (j *ValuationJob) Name() string { return "daily_valuation" }

func (j *ValuationJob) Run(ctx context.Context) error {
	today := j.Recorder.Today()
	snapshot, err := j.Recorder.RecordDailySnapshot(ctx, today)
	if err != nil {
		return err
	}
	if snapshot == nil {
		j.Log.Info().Str("date", today.Format("2006-01-02")).Msg("Snapshot already recorded")
	}
	return nil
}

// ValuationCrossesMidnight reports whether the valuation of a refresh at
// hour:minute would run on the next calendar day
func ValuationCrossesMidnight(hour, minute int) bool {
	return time.Duration(hour*60+minute)*time.Minute+ValuationDelay >= 24*time.Hour
}

// RegisterDailyJobs schedules the price refresh at hour:minute and the
// valuation ValuationDelay later, on the same calendar day
func RegisterDailyJobs(s *Scheduler, hour, minute int, prices PriceRefresher, recorder dashboard.SnapshotRecorder) error {
	if ValuationCrossesMidnight(hour, minute) {
		return fmt.Errorf("price refresh at %02d:%02d leaves no room for the valuation %s later on the same day",
			hour, minute, ValuationDelay)
	}
	if err := s.AddDaily(hour, minute, &PriceRefreshJob{Prices: prices, Log: s.log}); err != nil {
		return err
	}
	delay := int(ValuationDelay / time.Minute)
	return s.AddDaily(hour, minute+delay, &ValuationJob{Recorder: recorder, Log: s.log})
}
