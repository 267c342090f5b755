package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/domain"
)

// fakeClient records every Analyze call and answers via the respond func.
// Safe for concurrent use; the synthesizer fans analyses out in parallel.
type fakeClient struct {
	mu      sync.Mutex
	calls   []fakeCall
	respond func(call int, system, prompt string) (json.RawMessage, error)
}

type fakeCall struct {
	System string
	Prompt string
}

func (f *fakeClient) Analyze(_ context.Context, system, prompt string) (json.RawMessage, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, fakeCall{System: system, Prompt: prompt})
	f.mu.Unlock()
	if f.respond == nil {
		return json.RawMessage("{}"), nil
	}
	return f.respond(n, system, prompt)
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClient) call(i int) fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

// respondJSON always returns the same payload.
func respondJSON(body string) func(int, string, string) (json.RawMessage, error) {
	return func(int, string, string) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	}
}

var errFakeBoom = errors.New("reasoning unavailable")

func testAnalysisCfg() config.AnalysisConfig {
	return config.AnalysisConfig{
		IdentifyBatchSize:  10,
		MinDebateComments:  2,
		MinDebateWords:     50,
		FallacyConfFloor:   0.75,
		QualityWeights:     domain.DefaultWeights,
		TopArgumentsMaxIn:  20,
		TopArgumentsMaxOut: 10,
	}
}

// newThread builds a thread with the given number of user comments, each
// holding wordsPerComment words at the given depth.
func newThread(id string, comments, wordsPerComment, depth int) *domain.DebateThread {
	th := &domain.DebateThread{
		ThreadID:    id,
		ThreadTitle: "Thread " + id,
		Subreddit:   "changemyview",
	}
	body := strings.TrimSpace(strings.Repeat("word ", wordsPerComment))
	for i := 0; i < comments; i++ {
		th.UserComments = append(th.UserComments, domain.Comment{
			ID:    id + "-c" + string(rune('a'+i)),
			Body:  body,
			Depth: depth,
		})
	}
	return th
}

// newDebate builds an identified debate with metadata.
func newDebate(id, category string, outcome domain.Outcome) *domain.DebateThread {
	th := newThread(id, 3, 60, 2)
	th.IsDebate = true
	th.Confidence = 0.9
	th.Metadata = &domain.DebateMetadata{
		Topic:           "Topic " + id,
		TopicCategory:   category,
		UserPosition:    "pro",
		ApparentOutcome: outcome,
	}
	return th
}

func quality(id string, structure, evidence, counter, persuasive, civility int) *domain.ArgumentQuality {
	q := &domain.ArgumentQuality{
		DebateID:        id,
		Structure:       domain.DimensionScore{Score: structure},
		Evidence:        domain.DimensionScore{Score: evidence},
		Counterargument: domain.DimensionScore{Score: counter},
		Persuasiveness:  domain.DimensionScore{Score: persuasive},
		Civility:        domain.DimensionScore{Score: civility},
	}
	q.OverallScore = domain.DefaultWeights.Overall(q)
	return q
}
