// Package driving defines the inbound ports of the core. These are the
// use-case interfaces the CLI drives; the services under
// internal/core/services implement them.
package driving
