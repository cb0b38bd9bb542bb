package driving

import "github.com/quaystone-labs/ragkit/internal/core/domain"

// UsageReporter exposes the daily token ledger.
type UsageReporter interface {
	// Snapshot returns current consumption against the daily quota,
	// rolling the ledger over first when the day has changed.
	Snapshot() (domain.UsageSnapshot, error)

	// History returns finalised past days as date to token count.
	History() (map[string]int64, error)

	// Reset zeroes today's counter and clears the history.
	Reset() error
}
