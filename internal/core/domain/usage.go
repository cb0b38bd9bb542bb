package domain

import "time"

// UsageDateFormat is the layout for ledger dates.
const UsageDateFormat = "2006-01-02"

// UsageRecord is the durable daily token ledger state.
// It is read-modified-written on every access.
type UsageRecord struct {
	// LastResetDate is the day the counter was last zeroed (YYYY-MM-DD).
	LastResetDate string `json:"last_reset_date"`

	// DailyUsage is the token count consumed since the last reset.
	DailyUsage int64 `json:"daily_usage"`

	// UsageHistory maps past dates to their final usage.
	UsageHistory map[string]int64 `json:"usage_history"`
}

// NewUsageRecord returns an empty record starting today.
func NewUsageRecord(now time.Time) UsageRecord {
	return UsageRecord{
		LastResetDate: now.Format(UsageDateFormat),
		DailyUsage:    0,
		UsageHistory:  make(map[string]int64),
	}
}

// UsageSnapshot is a point-in-time view of quota consumption.
type UsageSnapshot struct {
	// CurrentUsage is today's consumed tokens.
	CurrentUsage int64

	// DailyLimit is the configured quota.
	DailyLimit int64

	// Remaining is DailyLimit - CurrentUsage.
	Remaining int64

	// UsagePercent is consumption as a percentage of the quota.
	UsagePercent float64

	// LastResetDate is the day the counter was last zeroed.
	LastResetDate string
}
