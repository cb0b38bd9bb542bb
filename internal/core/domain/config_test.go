package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultRAGConfig tests the documented defaults
func TestDefaultRAGConfig(t *testing.T) {
	cfg := DefaultRAGConfig()

	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 1000, cfg.MaxTokens)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 0.1, cfg.SimilarityThreshold)
}

// TestRAGConfig_ApplyUpdates tests per-field validation
func TestRAGConfig_ApplyUpdates(t *testing.T) {
	tests := []struct {
		name         string
		updates      map[string]any
		wantApplied  []string
		wantRejected []string
		check        func(t *testing.T, cfg RAGConfig)
	}{
		{
			name:        "valid top_k",
			updates:     map[string]any{"top_k": 10},
			wantApplied: []string{"top_k"},
			check: func(t *testing.T, cfg RAGConfig) {
				assert.Equal(t, 10, cfg.TopK)
			},
		},
		{
			name:         "top_k above range",
			updates:      map[string]any{"top_k": 21},
			wantRejected: []string{"top_k"},
		},
		{
			name:         "top_k below range",
			updates:      map[string]any{"top_k": 0},
			wantRejected: []string{"top_k"},
		},
		{
			name:        "temperature boundary values",
			updates:     map[string]any{"temperature": 2.0},
			wantApplied: []string{"temperature"},
			check: func(t *testing.T, cfg RAGConfig) {
				assert.Equal(t, 2.0, cfg.Temperature)
			},
		},
		{
			name:         "temperature out of range",
			updates:      map[string]any{"temperature": 5.0},
			wantRejected: []string{"temperature"},
		},
		{
			name:         "similarity_threshold above one",
			updates:      map[string]any{"similarity_threshold": 1.5},
			wantRejected: []string{"similarity_threshold"},
		},
		{
			name:        "zero chunk_overlap accepted",
			updates:     map[string]any{"chunk_overlap": 0},
			wantApplied: []string{"chunk_overlap"},
			check: func(t *testing.T, cfg RAGConfig) {
				assert.Equal(t, 0, cfg.ChunkOverlap)
			},
		},
		{
			name:         "unknown field rejected",
			updates:      map[string]any{"model_name": "foo"},
			wantRejected: []string{"model_name"},
		},
		{
			name:         "wrong type rejected",
			updates:      map[string]any{"top_k": "five"},
			wantRejected: []string{"top_k"},
		},
		{
			name:         "fractional value for int field rejected",
			updates:      map[string]any{"chunk_size": 1500.5},
			wantRejected: []string{"chunk_size"},
		},
		{
			name:        "json decoded integral float accepted",
			updates:     map[string]any{"max_tokens": float64(2000)},
			wantApplied: []string{"max_tokens"},
			check: func(t *testing.T, cfg RAGConfig) {
				assert.Equal(t, 2000, cfg.MaxTokens)
			},
		},
		{
			name: "mixed update applies valid fields only",
			updates: map[string]any{
				"top_k":       3,
				"temperature": 5.0,
			},
			wantApplied:  []string{"top_k"},
			wantRejected: []string{"temperature"},
			check: func(t *testing.T, cfg RAGConfig) {
				assert.Equal(t, 3, cfg.TopK)
				assert.Equal(t, DefaultTemperature, cfg.Temperature)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRAGConfig()
			result := cfg.ApplyUpdates(tt.updates)

			assert.ElementsMatch(t, tt.wantApplied, result.Applied)
			require.Len(t, result.Rejected, len(tt.wantRejected))
			for _, key := range tt.wantRejected {
				assert.Contains(t, result.Rejected, key)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// TestRAGConfig_ApplyUpdates_Empty tests an empty update
func TestRAGConfig_ApplyUpdates_Empty(t *testing.T) {
	cfg := DefaultRAGConfig()
	result := cfg.ApplyUpdates(map[string]any{})

	assert.Empty(t, result.Applied)
	assert.Empty(t, result.Rejected)
	assert.Equal(t, DefaultRAGConfig(), cfg)
}
