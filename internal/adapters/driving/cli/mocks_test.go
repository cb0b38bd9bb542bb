package cli

import (
	"context"
	"errors"
	"time"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldAsk := askService
	oldSearch := searchService
	oldUsage := usageService

	ingestService = &mockIngestor{}
	askService = &mockOrchestrator{}
	searchService = &mockSearcher{}
	usageService = &mockUsageReporter{}

	return func() {
		ingestService = oldIngest
		askService = oldAsk
		searchService = oldSearch
		usageService = oldUsage
	}
}

type mockIngestor struct{}

func (m *mockIngestor) IngestFile(ctx context.Context, path string) (*domain.Document, error) {
	return &domain.Document{
		ID:         "doc-1",
		Filename:   "mock.txt",
		Status:     domain.StatusCompleted,
		ChunkCount: 2,
	}, nil
}

func (m *mockIngestor) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return &domain.Document{
		ID:         id,
		Filename:   "mock.txt",
		Format:     ".txt",
		Size:       42,
		Status:     domain.StatusCompleted,
		TextLength: 40,
		ChunkCount: 2,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
	}, nil
}

func (m *mockIngestor) ListDocuments(ctx context.Context) ([]*domain.Document, error) {
	return []*domain.Document{
		{ID: "doc-1", Filename: "first.txt", Status: domain.StatusCompleted, ChunkCount: 3},
		{ID: "doc-2", Filename: "second.md", Status: domain.StatusFailed, ErrorMessage: "no text"},
	}, nil
}

func (m *mockIngestor) DeleteDocument(ctx context.Context, id string) error { return nil }

func (m *mockIngestor) Reindex(ctx context.Context) error { return nil }

type mockOrchestrator struct{}

func (m *mockOrchestrator) Ask(ctx context.Context, question string, history []domain.ChatTurn) (*domain.Answer, error) {
	return &domain.Answer{
		Text:        "The answer is grounded [Source 1].",
		ContextUsed: true,
		Model:       "mock-model",
		TokensUsed:  42,
		Sources: []domain.SourceAttribution{
			{Index: 1, DocumentName: "mock.txt", ChunkIndex: 0, Score: 0.9, Preview: "preview"},
		},
	}, nil
}

func (m *mockOrchestrator) UpdateConfig(updates map[string]any) domain.ConfigUpdateResult {
	result := domain.ConfigUpdateResult{Rejected: make(map[string]string)}
	for key := range updates {
		result.Applied = append(result.Applied, key)
	}
	return result
}

func (m *mockOrchestrator) Config() domain.RAGConfig { return domain.DefaultRAGConfig() }

func (m *mockOrchestrator) Stats(ctx context.Context) (driving.SystemStats, error) {
	return driving.SystemStats{
		DocumentCount:      2,
		CompletedDocuments: 1,
		ChunkCount:         5,
		VocabularySize:     100,
		IndexDimension:     512,
		Model:              "mock-model",
		Config:             domain.DefaultRAGConfig(),
	}, nil
}

func (m *mockOrchestrator) CheckHealth(ctx context.Context) error { return nil }

type mockSearcher struct{}

func (m *mockSearcher) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	return []domain.SearchResult{
		{
			ChunkID:      1,
			DocumentID:   "doc-1",
			DocumentName: "mock.txt",
			ChunkIndex:   0,
			Content:      "A matching snippet of text.",
			Score:        0.95,
		},
	}, nil
}

type mockSearcherError struct{}

func (m *mockSearcherError) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	return nil, errors.New("index unavailable")
}

type mockUsageReporter struct{}

func (m *mockUsageReporter) Snapshot() (domain.UsageSnapshot, error) {
	return domain.UsageSnapshot{
		CurrentUsage:  1500,
		DailyLimit:    2_000_000,
		Remaining:     1_998_500,
		UsagePercent:  0.075,
		LastResetDate: "2026-01-02",
	}, nil
}

func (m *mockUsageReporter) History() (map[string]int64, error) {
	return map[string]int64{"2026-01-01": 4000}, nil
}

func (m *mockUsageReporter) Reset() error { return nil }
