// Package services implements the core use cases: retrieval over the
// vector index, document ingestion, question answering and the daily
// token ledger. Services depend only on the driven ports, so adapters
// can be swapped freely in tests and at startup.
package services
