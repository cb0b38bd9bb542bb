package domain

import (
	"fmt"
	"math"
)

// Default retrieval and generation parameters.
const (
	DefaultTopK                = 5
	DefaultTemperature         = 0.7
	DefaultMaxTokens           = 1000
	DefaultChunkSize           = 1000
	DefaultChunkOverlap        = 200
	DefaultSimilarityThreshold = 0.1
)

// RAGConfig holds the runtime-tunable retrieval and generation
// parameters. Fields are updated through ApplyUpdates, which validates
// each field against its declared range.
type RAGConfig struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// Temperature controls generation randomness.
	Temperature float64

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// ChunkSize is the chunking window in characters.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks in characters.
	ChunkOverlap int

	// SimilarityThreshold drops retrieval hits scoring below it.
	SimilarityThreshold float64
}

// DefaultRAGConfig returns the configuration defaults.
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		TopK:                DefaultTopK,
		Temperature:         DefaultTemperature,
		MaxTokens:           DefaultMaxTokens,
		ChunkSize:           DefaultChunkSize,
		ChunkOverlap:        DefaultChunkOverlap,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// ConfigUpdateResult reports the outcome of a partial config update.
// Valid fields are applied even when other fields in the same request
// are rejected.
type ConfigUpdateResult struct {
	// Applied lists the field names that were accepted.
	Applied []string

	// Rejected maps field names to the reason they were refused.
	Rejected map[string]string
}

// intField describes the valid range for an integer config field.
type intField struct {
	min, max int
	set      func(*RAGConfig, int)
}

// floatField describes the valid range for a float config field.
type floatField struct {
	min, max float64
	set      func(*RAGConfig, float64)
}

var intFields = map[string]intField{
	"top_k":         {1, 20, func(c *RAGConfig, v int) { c.TopK = v }},
	"max_tokens":    {100, 4000, func(c *RAGConfig, v int) { c.MaxTokens = v }},
	"chunk_size":    {100, 5000, func(c *RAGConfig, v int) { c.ChunkSize = v }},
	"chunk_overlap": {0, 1000, func(c *RAGConfig, v int) { c.ChunkOverlap = v }},
}

var floatFields = map[string]floatField{
	"temperature":          {0, 2, func(c *RAGConfig, v float64) { c.Temperature = v }},
	"similarity_threshold": {0, 1, func(c *RAGConfig, v float64) { c.SimilarityThreshold = v }},
}

// ApplyUpdates validates each field of updates against its declared
// range and applies the valid ones. Out-of-range or wrong-typed fields
// are rejected individually without affecting the rest; unknown keys
// are rejected as well.
func (c *RAGConfig) ApplyUpdates(updates map[string]any) ConfigUpdateResult {
	result := ConfigUpdateResult{
		Rejected: make(map[string]string),
	}

	for key, raw := range updates {
		if f, ok := intFields[key]; ok {
			v, err := asInt(raw)
			if err != nil {
				result.Rejected[key] = err.Error()
				continue
			}
			if v < f.min || v > f.max {
				result.Rejected[key] = fmt.Sprintf("value %d out of range [%d, %d]", v, f.min, f.max)
				continue
			}
			f.set(c, v)
			result.Applied = append(result.Applied, key)
			continue
		}

		if f, ok := floatFields[key]; ok {
			v, err := asFloat(raw)
			if err != nil {
				result.Rejected[key] = err.Error()
				continue
			}
			if v < f.min || v > f.max {
				result.Rejected[key] = fmt.Sprintf("value %g out of range [%g, %g]", v, f.min, f.max)
				continue
			}
			f.set(c, v)
			result.Applied = append(result.Applied, key)
			continue
		}

		result.Rejected[key] = "unknown config field"
	}

	return result
}

// asInt converts the decoded value of a config field to int.
// JSON decodes numbers as float64 and TOML as int64, so both are
// accepted when they carry an integral value.
func asInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %g", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

// asFloat converts the decoded value of a config field to float64.
func asFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}
