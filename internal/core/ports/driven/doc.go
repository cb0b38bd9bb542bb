// Package driven defines the outbound ports of the core. These are the
// interfaces the core depends on; adapters under internal/adapters/driven
// implement them.
package driven
