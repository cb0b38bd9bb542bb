package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
	"github.com/quaystone-labs/ragkit/internal/core/ports/driving"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// Ensure RAGService implements the interfaces.
var (
	_ driving.Orchestrator = (*RAGService)(nil)
	_ driving.Searcher     = (*RAGService)(nil)
)

// DefaultGenerationTimeout bounds a single generation call.
const DefaultGenerationTimeout = 2 * time.Minute

// sourcePreviewLength is how many runes of a chunk are kept in the
// source attribution preview.
const sourcePreviewLength = 200

// systemPrompt frames every generation call.
const systemPrompt = "You are a knowledgeable assistant that answers questions using the provided reference material. Be accurate and concise."

// fallbackAnswer is returned verbatim when no retrieved chunk clears
// the similarity threshold. No generation call is made in that case.
const fallbackAnswer = "Sorry, I could not find information relevant to your question in the current knowledge base. Try rephrasing the question or ingesting documents that cover this topic."

// RAGService answers questions by retrieving context and handing it to
// the generation provider. It also exposes similarity search without
// generation and the runtime configuration.
type RAGService struct {
	retrieval  *RetrievalService
	generation driven.GenerationService
	ledger     *UsageLedger
	docStore   driven.DocumentStore

	genTimeout time.Duration
	genStream  bool

	cfgMu sync.RWMutex
	cfg   domain.RAGConfig
}

// RAGOption configures a RAGService.
type RAGOption func(*RAGService)

// WithConfig sets the initial runtime configuration.
func WithConfig(cfg domain.RAGConfig) RAGOption {
	return func(s *RAGService) { s.cfg = cfg }
}

// WithGenerationTimeout bounds each generation call.
func WithGenerationTimeout(d time.Duration) RAGOption {
	return func(s *RAGService) { s.genTimeout = d }
}

// WithStreaming makes generation calls request streamed completions.
// The provider adapter reassembles the stream, so answers are unchanged.
func WithStreaming(stream bool) RAGOption {
	return func(s *RAGService) { s.genStream = stream }
}

// NewRAGService creates the orchestrator. generation may be nil when no
// provider is configured; Ask then fails with ErrGenerationUnavailable
// while Search keeps working.
func NewRAGService(
	retrieval *RetrievalService,
	generation driven.GenerationService,
	ledger *UsageLedger,
	docStore driven.DocumentStore,
	opts ...RAGOption,
) *RAGService {
	s := &RAGService{
		retrieval:  retrieval,
		generation: generation,
		ledger:     ledger,
		docStore:   docStore,
		genTimeout: DefaultGenerationTimeout,
		cfg:        domain.DefaultRAGConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask retrieves context for the question, filters it by the similarity
// threshold and generates an answer citing the surviving chunks. When
// nothing clears the threshold a fixed fallback answer is returned
// without calling the provider or touching the token ledger.
func (s *RAGService) Ask(ctx context.Context, question string, history []domain.ChatTurn) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("ask: %w: empty question", domain.ErrInvalidInput)
	}
	if s.generation == nil {
		return nil, fmt.Errorf("ask: %w", domain.ErrGenerationUnavailable)
	}

	cfg := s.Config()
	started := time.Now()

	logger.Section("Ask")
	logger.Debug("question: %s", question)

	results, err := s.retrieval.SearchText(ctx, question, cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	retrievalTime := time.Since(started)

	relevant := results[:0:len(results)]
	for _, r := range results {
		if r.Score >= cfg.SimilarityThreshold {
			relevant = append(relevant, r)
		}
	}
	logger.Debug("retrieved %d chunks, %d above threshold %.2f", len(results), len(relevant), cfg.SimilarityThreshold)

	if len(relevant) == 0 {
		return &domain.Answer{
			Text:          fallbackAnswer,
			ContextUsed:   false,
			RetrievalTime: retrievalTime,
			TotalTime:     time.Since(started),
		}, nil
	}

	prompt := buildPrompt(question, relevant, history)

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	genStarted := time.Now()
	result, err := s.generation.Generate(genCtx, driven.GenerationRequest{
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Stream:       s.genStream,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	generationTime := time.Since(genStarted)

	if s.ledger != nil && result.TotalTokens > 0 {
		ok, err := s.ledger.Add(int64(result.TotalTokens))
		if err != nil {
			logger.Warn("record token usage: %v", err)
		} else if !ok {
			logger.Warn("daily token quota exhausted, answer delivered anyway")
		}
	}

	sources := make([]domain.SourceAttribution, len(relevant))
	for i, r := range relevant {
		sources[i] = domain.SourceAttribution{
			Index:        i + 1,
			DocumentName: r.DocumentName,
			ChunkIndex:   r.ChunkIndex,
			Score:        r.Score,
			Preview:      preview(r.Content, sourcePreviewLength),
		}
	}

	answer := &domain.Answer{
		Text:           result.Content,
		Sources:        sources,
		ContextUsed:    true,
		Model:          result.Model,
		TokensUsed:     result.TotalTokens,
		RetrievalTime:  retrievalTime,
		GenerationTime: generationTime,
		TotalTime:      time.Since(started),
	}
	logger.Info("answered with %d sources in %s", len(sources), answer.TotalTime.Round(time.Millisecond))
	return answer, nil
}

// Search runs similarity search without generation. topK <= 0 uses the
// configured default.
func (s *RAGService) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: %w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.Config().TopK
	}
	return s.retrieval.SearchText(ctx, query, topK)
}

// UpdateConfig applies a partial configuration update. Valid fields
// apply even when others are rejected.
func (s *RAGService) UpdateConfig(updates map[string]any) domain.ConfigUpdateResult {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	result := s.cfg.ApplyUpdates(updates)
	for field, reason := range result.Rejected {
		logger.Warn("config field %s rejected: %s", field, reason)
	}
	if len(result.Applied) > 0 {
		logger.Info("config updated: %s", strings.Join(result.Applied, ", "))
	}
	return result
}

// Config returns a copy of the active configuration.
func (s *RAGService) Config() domain.RAGConfig {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// Stats returns pipeline-wide statistics.
func (s *RAGService) Stats(ctx context.Context) (driving.SystemStats, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return driving.SystemStats{}, fmt.Errorf("list documents: %w", err)
	}

	completed := 0
	for _, doc := range docs {
		if doc.Status == domain.StatusCompleted {
			completed++
		}
	}

	model := ""
	if s.generation != nil {
		model = s.generation.ModelName()
	}

	indexStats, vocabSize := s.retrieval.Stats()
	return driving.SystemStats{
		DocumentCount:      len(docs),
		CompletedDocuments: completed,
		ChunkCount:         indexStats.TotalVectors,
		VocabularySize:     vocabSize,
		IndexDimension:     indexStats.Dimension,
		Model:              model,
		Config:             s.Config(),
	}, nil
}

// CheckHealth verifies the generation provider is reachable.
func (s *RAGService) CheckHealth(ctx context.Context) error {
	if s.generation == nil {
		return domain.ErrGenerationUnavailable
	}
	return s.generation.CheckHealth(ctx)
}

// buildPrompt assembles the grounded question: numbered context
// sections, the source list, prior conversation turns and the answering
// instructions.
func buildPrompt(question string, results []domain.SearchResult, history []domain.ChatTurn) string {
	var b strings.Builder

	b.WriteString("Answer the question using the reference material below.\n\n")

	b.WriteString("## Reference material\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[Source %d]\n%s\n\n", i+1, strings.TrimSpace(r.Content))
	}

	b.WriteString("## Sources\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (section %d, relevance %.2f)\n", i+1, r.DocumentName, r.ChunkIndex+1, r.Score)
	}
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("## Conversation so far\n")
		for _, turn := range history {
			role := "User"
			if turn.Role == "assistant" {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, strings.TrimSpace(turn.Content))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Question\n")
	b.WriteString(question)
	b.WriteString("\n\n")

	b.WriteString("## Instructions\n")
	b.WriteString("1. Base the answer only on the reference material above.\n")
	b.WriteString("2. Cite the sources you used by number, like [Source 1].\n")
	b.WriteString("3. If the reference material does not contain the answer, say so plainly instead of guessing.\n")
	b.WriteString("4. Keep the answer focused on the question.\n")

	return b.String()
}

// preview truncates s to at most limit runes, appending an ellipsis
// when text was cut.
func preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
