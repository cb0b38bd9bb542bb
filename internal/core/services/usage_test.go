package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// TestUsageLedger_Add tests that usage accumulates and persists.
func TestUsageLedger_Add(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemoryUsageStore(domain.NewUsageRecord(now))
	ledger := NewUsageLedger(store, 1000, WithClock(fixedClock(now)))

	ok, err := ledger.Add(300)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Add(200)
	require.NoError(t, err)
	assert.True(t, ok)

	snapshot, err := ledger.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(500), snapshot.CurrentUsage)
	assert.Equal(t, int64(500), snapshot.Remaining)
	assert.InDelta(t, 50.0, snapshot.UsagePercent, 0.001)
	assert.Equal(t, int64(500), store.record.DailyUsage)
}

// TestUsageLedger_QuotaExceeded tests that an addition over the limit
// returns false and leaves the counter untouched.
func TestUsageLedger_QuotaExceeded(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemoryUsageStore(domain.NewUsageRecord(now))
	ledger := NewUsageLedger(store, 100, WithClock(fixedClock(now)))

	ok, err := ledger.Add(90)
	require.NoError(t, err)
	require.True(t, ok)
	savesBefore := store.saves

	ok, err = ledger.Add(20)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, savesBefore, store.saves, "rejected addition must not persist")

	snapshot, err := ledger.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(90), snapshot.CurrentUsage)
}

// TestUsageLedger_NegativeTokens tests that a negative count is
// rejected as invalid input.
func TestUsageLedger_NegativeTokens(t *testing.T) {
	store := newMemoryUsageStore(domain.NewUsageRecord(time.Now()))
	ledger := NewUsageLedger(store, 1000)

	_, err := ledger.Add(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestUsageLedger_DayRollover tests that the first access of a new day
// archives the previous day and resets the counter.
func TestUsageLedger_DayRollover(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Hour)

	current := day1
	store := newMemoryUsageStore(domain.NewUsageRecord(day1))
	ledger := NewUsageLedger(store, 1000, WithClock(func() time.Time { return current }))

	ok, err := ledger.Add(400)
	require.NoError(t, err)
	require.True(t, ok)

	current = day2

	snapshot, err := ledger.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, snapshot.CurrentUsage)
	assert.Equal(t, day2.Format(domain.UsageDateFormat), snapshot.LastResetDate)

	history, err := ledger.History()
	require.NoError(t, err)
	assert.Equal(t, int64(400), history[day1.Format(domain.UsageDateFormat)])
}

// TestUsageLedger_UndatedRecordStampedFromClock tests that a brand-new
// store record gets its reset date from the ledger's clock, not the
// wall clock, and produces no phantom history entry.
func TestUsageLedger_UndatedRecordStampedFromClock(t *testing.T) {
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemoryUsageStore(domain.UsageRecord{})
	ledger := NewUsageLedger(store, 1000, WithClock(fixedClock(day)))

	snapshot, err := ledger.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, day.Format(domain.UsageDateFormat), snapshot.LastResetDate)
	assert.Zero(t, snapshot.CurrentUsage)
	assert.Equal(t, day.Format(domain.UsageDateFormat), store.record.LastResetDate)

	history, err := ledger.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestUsageLedger_RolloverSkipsEmptyDay tests that a day with no usage
// leaves no history entry.
func TestUsageLedger_RolloverSkipsEmptyDay(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	current := day1
	store := newMemoryUsageStore(domain.NewUsageRecord(day1))
	ledger := NewUsageLedger(store, 1000, WithClock(func() time.Time { return current }))

	current = day2

	history, err := ledger.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestUsageLedger_RolloverPersists tests that the reset is written back
// immediately, not deferred to the next Add.
func TestUsageLedger_RolloverPersists(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	current := day1
	store := newMemoryUsageStore(domain.NewUsageRecord(day1))
	ledger := NewUsageLedger(store, 1000, WithClock(func() time.Time { return current }))

	ok, err := ledger.Add(250)
	require.NoError(t, err)
	require.True(t, ok)

	current = day2
	_, err = ledger.Snapshot()
	require.NoError(t, err)

	assert.Zero(t, store.record.DailyUsage)
	assert.Equal(t, day2.Format(domain.UsageDateFormat), store.record.LastResetDate)
	assert.Equal(t, int64(250), store.record.UsageHistory[day1.Format(domain.UsageDateFormat)])
}

// TestUsageLedger_Reset tests that a reset zeroes the counter and
// clears the history.
func TestUsageLedger_Reset(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	current := day1
	store := newMemoryUsageStore(domain.NewUsageRecord(day1))
	ledger := NewUsageLedger(store, 1000, WithClock(func() time.Time { return current }))

	ok, err := ledger.Add(600)
	require.NoError(t, err)
	require.True(t, ok)

	current = day2
	_, err = ledger.Snapshot() // archives day1
	require.NoError(t, err)

	require.NoError(t, ledger.Reset())

	snapshot, err := ledger.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, snapshot.CurrentUsage)

	history, err := ledger.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestUsageLedger_StoreErrors tests that store failures surface.
func TestUsageLedger_StoreErrors(t *testing.T) {
	store := newMemoryUsageStore(domain.NewUsageRecord(time.Now()))
	store.loadErr = errors.New("disk gone")
	ledger := NewUsageLedger(store, 1000)

	_, err := ledger.Add(10)
	assert.ErrorContains(t, err, "load usage")

	_, err = ledger.Snapshot()
	assert.ErrorContains(t, err, "load usage")
}
