package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/simaogato/assetledger-backend/internal/usecase/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPriceRefresher is a mock implementation of PriceRefresher for testing
type MockPriceRefresher struct {
	mock.Mock
}

func (m *MockPriceRefresher) RefreshDailyPrices(ctx context.Context) (*pricing.RefreshResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.RefreshResult), args.Error(1)
}

// MockRecorder is a mock implementation of dashboard.SnapshotRecorder for testing
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordDailySnapshot(ctx context.Context, date time.Time) (*domain.Snapshot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockRecorder) Today() time.Time {
	return m.Called().Get(0).(time.Time)
}

func TestDailySpec(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{0, 30, "30 0 * * *"},
		{0, 40, "40 0 * * *"},
		{9, 55, "55 9 * * *"},
		{9, 65, "5 10 * * *"},
		{23, 55, "55 23 * * *"},
		{23, 65, "5 0 * * *"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DailySpec(tt.hour, tt.minute))
	}
}

func TestRegisterDailyJobs(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	s := New(tokyo, zerolog.Nop())

	require.NoError(t, RegisterDailyJobs(s, 23, 45, new(MockPriceRefresher), new(MockRecorder)))

	entries := s.cron.Entries()
	require.Len(t, entries, 2)

	from := time.Date(2024, 6, 3, 12, 0, 0, 0, tokyo)
	assert.True(t, time.Date(2024, 6, 3, 23, 45, 0, 0, tokyo).Equal(entries[0].Schedule.Next(from)))
	assert.True(t, time.Date(2024, 6, 3, 23, 55, 0, 0, tokyo).Equal(entries[1].Schedule.Next(from)))
}

func TestRegisterDailyJobs_ValuationPastMidnight(t *testing.T) {
	tests := []struct {
		hour, minute int
	}{
		{23, 50},
		{23, 55},
		{23, 59},
	}

	for _, tt := range tests {
		s := New(nil, zerolog.Nop())
		err := RegisterDailyJobs(s, tt.hour, tt.minute, new(MockPriceRefresher), new(MockRecorder))
		assert.ErrorContains(t, err, "same day")
		assert.Empty(t, s.cron.Entries())
	}
}

func TestValuationCrossesMidnight(t *testing.T) {
	assert.False(t, ValuationCrossesMidnight(0, 30))
	assert.False(t, ValuationCrossesMidnight(23, 49))
	assert.True(t, ValuationCrossesMidnight(23, 50))
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(nil, zerolog.Nop())
	err := s.AddJob("not a schedule", &PriceRefreshJob{Prices: new(MockPriceRefresher)})
	assert.ErrorContains(t, err, "failed to schedule price_refresh")
}

func TestPriceRefreshJob(t *testing.T) {
	prices := new(MockPriceRefresher)
	prices.On("RefreshDailyPrices", mock.Anything).Return(&pricing.RefreshResult{Fetched: 2, Failed: 1}, nil).Once()
	prices.On("RefreshDailyPrices", mock.Anything).Return(nil, errors.New("db down")).Once()

	s := New(nil, zerolog.Nop())
	job := &PriceRefreshJob{Prices: prices, Log: zerolog.Nop()}

	assert.NoError(t, s.RunNow(job))
	assert.EqualError(t, s.RunNow(job), "db down")
	prices.AssertExpectations(t)
}

func TestValuationJob(t *testing.T) {
	today := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	recorder := new(MockRecorder)
	recorder.On("Today").Return(today)
	recorder.On("RecordDailySnapshot", mock.Anything, today).Return(&domain.Snapshot{Date: today}, nil).Once()
	recorder.On("RecordDailySnapshot", mock.Anything, today).Return(nil, nil).Once()

	s := New(nil, zerolog.Nop())
	job := &ValuationJob{Recorder: recorder, Log: zerolog.Nop()}

	assert.NoError(t, s.RunNow(job))
	assert.NoError(t, s.RunNow(job))
	recorder.AssertExpectations(t)
}

func TestStopCancelsJobContext(t *testing.T) {
	s := New(nil, zerolog.Nop())
	s.Start()
	s.Stop()

	prices := new(MockPriceRefresher)
	prices.On("RefreshDailyPrices", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() != nil
	})).Return(nil, context.Canceled)

	err := s.RunNow(&PriceRefreshJob{Prices: prices})
	assert.ErrorIs(t, err, context.Canceled)
	prices.AssertExpectations(t)
}
