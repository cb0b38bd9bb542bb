package services

import (
	"context"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
)

// memoryUsageStore is an in-memory UsageStore for ledger tests.
type memoryUsageStore struct {
	record  domain.UsageRecord
	loadErr error
	saveErr error
	saves   int
}

func newMemoryUsageStore(record domain.UsageRecord) *memoryUsageStore {
	return &memoryUsageStore{record: record}
}

func (s *memoryUsageStore) Load() (domain.UsageRecord, error) {
	if s.loadErr != nil {
		return domain.UsageRecord{}, s.loadErr
	}
	return s.record, nil
}

func (s *memoryUsageStore) Save(record domain.UsageRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.record = record
	s.saves++
	return nil
}

// mockGeneration is a scripted GenerationService.
type mockGeneration struct {
	result    *driven.GenerationResult
	err       error
	healthErr error

	calls   int
	lastReq driven.GenerationRequest
}

func (m *mockGeneration) Generate(ctx context.Context, req driven.GenerationRequest) (*driven.GenerationResult, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockGeneration) ModelName() string { return "mock-model" }

func (m *mockGeneration) CheckHealth(ctx context.Context) error { return m.healthErr }

func (m *mockGeneration) Close() error { return nil }
