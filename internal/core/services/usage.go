package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driving"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// Ensure UsageLedger implements the interface.
var _ driving.UsageReporter = (*UsageLedger)(nil)

// UsageLedger tracks daily token consumption against an advisory
// quota. Every access is a read-modify-write of the durable record
// under one lock, so concurrent generation calls cannot lose updates.
// On the first access of a new day the previous day's count is
// archived into the history and the counter reset.
type UsageLedger struct {
	mu    sync.Mutex
	store driven.UsageStore
	limit int64
	now   func() time.Time
}

// LedgerOption configures a UsageLedger.
type LedgerOption func(*UsageLedger)

// WithClock overrides the ledger's time source. Useful for testing
// rollover behaviour.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *UsageLedger) { l.now = now }
}

// NewUsageLedger creates a ledger over the given store and daily limit.
func NewUsageLedger(store driven.UsageStore, limit int64, opts ...LedgerOption) *UsageLedger {
	l := &UsageLedger{
		store: store,
		limit: limit,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add records tokens consumed by a generation call. Returns false when
// the addition would exceed the daily quota; in that case the counter
// is left unchanged and nothing is persisted. The quota is advisory:
// callers decide whether to act on a false return.
func (l *UsageLedger) Add(tokens int64) (bool, error) {
	if tokens < 0 {
		return false, fmt.Errorf("add usage: %w: negative token count %d", domain.ErrInvalidInput, tokens)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.loadAndRoll()
	if err != nil {
		return false, err
	}

	newUsage := record.DailyUsage + tokens
	if newUsage > l.limit {
		logger.Warn("daily token quota exceeded: %d > %d", newUsage, l.limit)
		return false, nil
	}

	record.DailyUsage = newUsage
	if err := l.store.Save(record); err != nil {
		return false, fmt.Errorf("persist usage: %w", err)
	}

	logger.Debug("recorded %d tokens, %d/%d used today", tokens, newUsage, l.limit)
	return true, nil
}

// Snapshot returns current consumption against the quota.
func (l *UsageLedger) Snapshot() (domain.UsageSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.loadAndRoll()
	if err != nil {
		return domain.UsageSnapshot{}, err
	}

	snapshot := domain.UsageSnapshot{
		CurrentUsage:  record.DailyUsage,
		DailyLimit:    l.limit,
		Remaining:     l.limit - record.DailyUsage,
		LastResetDate: record.LastResetDate,
	}
	if l.limit > 0 {
		snapshot.UsagePercent = float64(record.DailyUsage) / float64(l.limit) * 100
	}
	return snapshot, nil
}

// History returns finalised past days as date to token count.
func (l *UsageLedger) History() (map[string]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.loadAndRoll()
	if err != nil {
		return nil, err
	}

	history := make(map[string]int64, len(record.UsageHistory))
	for date, count := range record.UsageHistory {
		history[date] = count
	}
	return history, nil
}

// Reset zeroes today's counter and clears the history.
func (l *UsageLedger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record := domain.NewUsageRecord(l.now())
	if err := l.store.Save(record); err != nil {
		return fmt.Errorf("persist reset: %w", err)
	}
	logger.Info("token usage ledger reset")
	return nil
}

// loadAndRoll loads the record and performs the day rollover if the
// stored reset date is not today. The rollover is persisted
// immediately so a crash cannot double-count a day. Caller holds the
// lock.
func (l *UsageLedger) loadAndRoll() (domain.UsageRecord, error) {
	record, err := l.store.Load()
	if err != nil {
		return domain.UsageRecord{}, fmt.Errorf("load usage: %w", err)
	}
	if record.UsageHistory == nil {
		record.UsageHistory = make(map[string]int64)
	}

	today := l.now().Format(domain.UsageDateFormat)
	if record.LastResetDate == today {
		return record, nil
	}

	if record.DailyUsage > 0 {
		record.UsageHistory[record.LastResetDate] = record.DailyUsage
	}
	record.LastResetDate = today
	record.DailyUsage = 0

	if err := l.store.Save(record); err != nil {
		return domain.UsageRecord{}, fmt.Errorf("persist rollover: %w", err)
	}
	logger.Info("daily token usage reset for %s", today)
	return record, nil
}
