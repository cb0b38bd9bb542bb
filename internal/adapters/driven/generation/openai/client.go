// Package openai provides a generation service adapter for
// OpenAI-compatible chat completion APIs, including DeepSeek.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/time/rate"

	"github.com/quaystone-labs/ragkit/internal/core/ports/driven"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.GenerationService = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 120 * time.Second

	// DefaultRequestsPerMinute bounds how fast completion calls are
	// issued to the provider.
	DefaultRequestsPerMinute = 60

	// tokenEncoding is the encoding used to estimate prompt sizes when
	// the provider omits usage accounting.
	tokenEncoding = "cl100k_base"
)

// Config holds configuration for the generation client.
type Config struct {
	// APIKey is the provider API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.deepseek.com/v1).
	// Can be changed for OpenAI or any compatible API.
	BaseURL string

	// Model is the chat model to use (default: deepseek-chat).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerMinute caps the request rate (default: 60).
	RequestsPerMinute int
}

// Client calls an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *rate.Limiter
	encoder *tiktoken.Tiktoken
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model         string              `json:"model"`
	Messages      []chatCompletionMsg `json:"messages"`
	MaxTokens     int                 `json:"max_tokens,omitempty"`
	Temperature   float64             `json:"temperature,omitempty"`
	Stream        bool                `json:"stream"`
	StreamOptions *streamOptions      `json:"stream_options,omitempty"`
}

// streamOptions asks the provider to append a usage chunk to the
// stream.
type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
	Error   *chatError   `json:"error,omitempty"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// chatCompletionChunk is one server-sent event of a streamed
// completion. The usage block arrives in a trailing chunk when
// stream_options requested it.
type chatCompletionChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage"`
}

// NewClient creates a generation client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generation: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	// The estimator is best-effort: without it the client still works,
	// token counts just fall back to the provider's numbers or zero.
	encoder, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		logger.Warn("token encoding %s unavailable: %v", tokenEncoding, err)
		encoder = nil
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		encoder: encoder,
	}, nil
}

// Generate produces a completion for the request.
func (c *Client) Generate(ctx context.Context, req driven.GenerationRequest) (*driven.GenerationResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("generation rate limit: %w", err)
	}

	var messages []chatCompletionMsg
	if req.SystemPrompt != "" {
		messages = append(messages, chatCompletionMsg{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatCompletionMsg{Role: "user", Content: req.Prompt})

	body := chatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   req.Stream,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		body.Temperature = req.Temperature
	}

	var (
		resp *chatCompletionResponse
		err  error
	)
	if req.Stream {
		body.StreamOptions = &streamOptions{IncludeUsage: true}
		resp, err = c.postStream(ctx, body)
	} else {
		resp, err = c.post(ctx, body)
	}
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generation: no response choices returned")
	}

	result := &driven.GenerationResult{
		Content:          resp.Choices[0].Message.Content,
		Model:            resp.Model,
		FinishReason:     resp.Choices[0].FinishReason,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if result.Model == "" {
		result.Model = c.model
	}

	// Some compatible providers omit the usage block. Estimate locally
	// so quota tracking keeps working.
	if result.TotalTokens == 0 {
		result.PromptTokens = c.countTokens(req.SystemPrompt) + c.countTokens(req.Prompt)
		result.CompletionTokens = c.countTokens(result.Content)
		result.TotalTokens = result.PromptTokens + result.CompletionTokens
		logger.Debug("provider omitted usage, estimated %d tokens", result.TotalTokens)
	}

	return result, nil
}

// post sends the request and decodes the response.
func (c *Client) post(ctx context.Context, body chatCompletionRequest) (*chatCompletionResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("generation error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return &chatResp, nil
}

// postStream sends a streaming request and folds the server-sent
// chunks back into a single response. The content deltas are
// concatenated in arrival order; model, finish reason and usage are
// taken from whichever chunks carry them.
func (c *Client) postStream(ctx context.Context, body chatCompletionRequest) (*chatCompletionResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var chatResp chatCompletionResponse
		if json.Unmarshal(respBody, &chatResp) == nil && chatResp.Error != nil {
			return nil, fmt.Errorf("generation error: %s", chatResp.Error.Message)
		}
		return nil, fmt.Errorf("generation error (status %d): %s", resp.StatusCode, string(respBody))
	}

	agg := &chatCompletionResponse{Choices: []chatChoice{{}}}
	var content strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil, fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Model != "" {
			agg.Model = chunk.Model
		}
		if len(chunk.Choices) > 0 {
			content.WriteString(chunk.Choices[0].Delta.Content)
			if chunk.Choices[0].FinishReason != "" {
				agg.Choices[0].FinishReason = chunk.Choices[0].FinishReason
			}
		}
		if chunk.Usage != nil {
			agg.Usage = *chunk.Usage
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	agg.Choices[0].Message.Content = content.String()
	return agg, nil
}

// countTokens estimates the token count of text. Falls back to a rough
// 4-characters-per-token heuristic without an encoder.
func (c *Client) countTokens(text string) int {
	if text == "" {
		return 0
	}
	if c.encoder == nil {
		return len(text) / 4
	}
	return len(c.encoder.Encode(text, nil, nil))
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string {
	return c.model
}

// CheckHealth verifies the provider accepts the credentials by running
// a minimal single-token completion.
func (c *Client) CheckHealth(ctx context.Context) error {
	_, err := c.post(ctx, chatCompletionRequest{
		Model: c.model,
		Messages: []chatCompletionMsg{
			{Role: "user", Content: "ping"},
		},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("generation health check: %w", err)
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
