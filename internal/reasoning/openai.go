package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/erislabs/go-debate-backend/internal/config"
)

// OpenAIClient calls any OpenAI-compatible chat-completions endpoint. It is
// the backend of choice for locally hosted models (vLLM, llama.cpp server,
// GLM and friends all speak this dialect).
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	maxRetries  int
	baseBackoff time.Duration
	httpClient  *http.Client
}

// NewOpenAIClient builds a client from the reasoning config. BaseURL must
// point at the API root (e.g. "http://localhost:8000/v1").
func NewOpenAIClient(cfg config.ReasoningConfig) *OpenAIClient {
	return &OpenAIClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		baseBackoff: cfg.BaseBackoff,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

type openAIRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends one prompt and returns the JSON extracted from the reply.
func (c *OpenAIClient) Analyze(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	msgs := make([]openAIMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, openAIMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, openAIMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(openAIRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    msgs,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning: marshal request: %w", err)
	}

	return doWithRetry(ctx, c.maxRetries, c.baseBackoff, func() (json.RawMessage, int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, 0, fmt.Errorf("reasoning: openai request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resp.StatusCode, fmt.Errorf("reasoning: read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, resp.StatusCode, fmt.Errorf("reasoning: openai status %d: %s", resp.StatusCode, truncate(string(raw), 200))
		}

		var or openAIResponse
		if err := json.Unmarshal(raw, &or); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("reasoning: decode response: %w", err)
		}
		if len(or.Choices) == 0 {
			return json.RawMessage("{}"), resp.StatusCode, nil
		}
		return ExtractJSON(or.Choices[0].Message.Content), resp.StatusCode, nil
	})
}
