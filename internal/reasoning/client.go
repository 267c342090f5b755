// Package reasoning wraps the LLM backends used by the analyzers behind a
// small Client interface. Two backends are supported: the Anthropic Messages
// API and any OpenAI-compatible chat-completions endpoint (useful for local
// models). Both share the same retry policy: only HTTP 429 is retried, with
// exponential backoff, up to a configured number of attempts.
package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/erislabs/go-debate-backend/internal/config"
)

// ErrRateLimited is returned after every retry attempt hit HTTP 429.
var ErrRateLimited = errors.New("reasoning: rate limited after retries")

// Client sends one analysis request to an LLM and returns whatever JSON the
// model produced. Implementations extract JSON from the raw completion text,
// so callers can unmarshal the result directly into their response types. A
// malformed completion yields an empty JSON object, not an error.
type Client interface {
	Analyze(ctx context.Context, system, prompt string) (json.RawMessage, error)
}

// New builds the Client selected by cfg.Backend.
func New(cfg config.ReasoningConfig) (Client, error) {
	switch cfg.Backend {
	case "anthropic":
		return NewAnthropicClient(cfg), nil
	case "openai":
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("reasoning: unknown backend %q", cfg.Backend)
	}
}

// doWithRetry executes fn up to maxRetries times, sleeping base*2^attempt
// between attempts, but only when fn reports an HTTP 429. Any other error
// fails immediately.
func doWithRetry(ctx context.Context, maxRetries int, base time.Duration, fn func() (json.RawMessage, int, error)) (json.RawMessage, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		out, status, err := fn()
		if err == nil {
			return out, nil
		}
		if status != http.StatusTooManyRequests {
			return nil, err
		}
		if attempt == maxRetries-1 {
			break
		}
		wait := base * (1 << attempt)
		log.Warn().Int("attempt", attempt+1).Dur("backoff", wait).Msg("reasoning backend rate limited, backing off")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, ErrRateLimited
}

// ExtractJSON pulls a JSON document out of free-form model output. It prefers
// a fenced ```json block; otherwise it takes the span from the first '{' or
// '[' to the last matching '}' or ']'. When nothing parseable is found it
// returns "{}" so downstream unmarshalling degrades to zero values.
func ExtractJSON(text string) json.RawMessage {
	if block, ok := fencedJSON(text); ok {
		if json.Valid([]byte(block)) {
			return json.RawMessage(block)
		}
	}
	if span, ok := braceSpan(text); ok {
		if json.Valid([]byte(span)) {
			return json.RawMessage(span)
		}
	}
	return json.RawMessage("{}")
}

func fencedJSON(text string) (string, bool) {
	const open = "```json"
	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(open):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func braceSpan(text string) (string, bool) {
	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')
	start, closer := objStart, byte('}')
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start, closer = arrStart, ']'
	}
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}
