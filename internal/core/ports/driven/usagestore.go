package driven

import "github.com/quaystone-labs/ragkit/internal/core/domain"

// UsageStore persists the daily token ledger.
type UsageStore interface {
	// Load returns the stored record. A missing record is not an error;
	// implementations return an empty record with no reset date and let
	// the ledger stamp it from its own clock.
	Load() (domain.UsageRecord, error)

	// Save writes the record.
	Save(record domain.UsageRecord) error
}
