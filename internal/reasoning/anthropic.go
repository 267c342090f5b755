package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erislabs/go-debate-backend/internal/config"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	maxRetries  int
	baseBackoff time.Duration
	httpClient  *http.Client
}

// NewAnthropicClient builds a client from the reasoning config.
func NewAnthropicClient(cfg config.ReasoningConfig) *AnthropicClient {
	base := cfg.BaseURL
	if base == "" {
		base = defaultAnthropicBaseURL
	}
	return &AnthropicClient{
		baseURL:     base,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		baseBackoff: cfg.BaseBackoff,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Analyze sends one prompt and returns the JSON extracted from the reply.
func (c *AnthropicClient) Analyze(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      system,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning: marshal request: %w", err)
	}

	return doWithRetry(ctx, c.maxRetries, c.baseBackoff, func() (json.RawMessage, int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, 0, fmt.Errorf("reasoning: anthropic request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resp.StatusCode, fmt.Errorf("reasoning: read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, resp.StatusCode, fmt.Errorf("reasoning: anthropic status %d: %s", resp.StatusCode, truncate(string(raw), 200))
		}

		var ar anthropicResponse
		if err := json.Unmarshal(raw, &ar); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("reasoning: decode response: %w", err)
		}
		var text string
		for _, blk := range ar.Content {
			if blk.Type == "text" {
				text += blk.Text
			}
		}
		return ExtractJSON(text), resp.StatusCode, nil
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
