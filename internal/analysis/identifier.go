package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/domain"
	"github.com/erislabs/go-debate-backend/internal/reasoning"
)

const identifySystemPrompt = `You are an expert at identifying argumentative debates in online discussions.

Your task is to analyze Reddit comments and determine which are part of substantive debates
(back-and-forth exchanges where people argue different positions) versus casual discussion,
simple Q&A, or agreement without argumentation.

You analyze the structure, content, and context to make accurate classifications.
Always respond with valid JSON matching the requested schema.`

const identifyPromptTemplate = `Analyze these Reddit comments from user "%s" and identify which are part of debates.

For each thread, determine:
1. Is this a debate? (argumentative exchange with opposing views)
2. If yes, extract metadata about the debate

A comment IS part of a debate if:
- Contains claim + reasoning (not just assertion)
- Responds to or presents an opposing viewpoint
- Shows back-and-forth exchange pattern
- Attempts to persuade or refute

A comment is NOT a debate if:
- Simple agreement/disagreement without reasoning
- Pure questions without argumentative intent
- Purely informational exchange
- Off-topic or joking
- One-sided statements with no opposition

## Comments to Analyze

%s

## Required JSON Output

Return a JSON object with this structure:
{
    "debates": [
        {
            "thread_id": "abc123",
            "is_debate": true,
            "confidence": 0.92,
            "metadata": {
                "topic": "Climate policy effectiveness",
                "topic_category": "politics",
                "user_position": "Pro nuclear energy as part of clean energy mix",
                "opponent_position": "Against nuclear, favors renewables only",
                "exchange_depth": 5,
                "is_ongoing": false,
                "apparent_outcome": "unresolved"
            }
        },
        {
            "thread_id": "def456",
            "is_debate": false,
            "confidence": 0.88,
            "reason": "Casual agreement with no opposing views"
        }
    ]
}

For apparent_outcome, use one of: user_won, opponent_won, draw, unresolved, ongoing.

Topic categories should be one of:
politics, technology, science, philosophy, ethics, economics, social, entertainment, sports, other

Analyze all %d threads and classify each one.`

// DebateIdentifier separates real debates from casual discussion, first with
// cheap local heuristics and then with batched model calls.
type DebateIdentifier struct {
	client reasoning.Client
	cfg    config.AnalysisConfig
}

// NewDebateIdentifier builds an identifier from config.
func NewDebateIdentifier(client reasoning.Client, cfg config.AnalysisConfig) *DebateIdentifier {
	return &DebateIdentifier{client: client, cfg: cfg}
}

// QuickFilter rejects threads that cannot be debates before any model call.
// Rejected threads are annotated in place with is_debate=false and a
// heuristic confidence; the returned slice holds only the survivors.
func (d *DebateIdentifier) QuickFilter(threads []*domain.DebateThread) []*domain.DebateThread {
	filtered := make([]*domain.DebateThread, 0, len(threads))
	for _, th := range threads {
		switch {
		case th.UserCommentCount() < d.cfg.MinDebateComments:
			th.IsDebate = false
			th.Confidence = 0.9
		case th.TotalUserWords() < d.cfg.MinDebateWords:
			th.IsDebate = false
			th.Confidence = 0.85
		case th.MaxDepth() == 0:
			// All top-level comments, no back-and-forth.
			th.IsDebate = false
			th.Confidence = 0.7
		default:
			filtered = append(filtered, th)
		}
	}
	log.Info().Int("passed", len(filtered)).Int("total", len(threads)).Msg("quick filter applied")
	return filtered
}

type identifyResponse struct {
	Debates []struct {
		ThreadID   string  `json:"thread_id"`
		IsDebate   bool    `json:"is_debate"`
		Confidence float64 `json:"confidence"`
		Reason     string  `json:"reason"`
		Metadata   *struct {
			Topic            string `json:"topic"`
			TopicCategory    string `json:"topic_category"`
			UserPosition     string `json:"user_position"`
			OpponentPosition string `json:"opponent_position"`
			ExchangeDepth    int    `json:"exchange_depth"`
			IsOngoing        bool   `json:"is_ongoing"`
			ApparentOutcome  string `json:"apparent_outcome"`
		} `json:"metadata"`
	} `json:"debates"`
}

// Identify classifies the given threads in batches, annotating each in place.
// Batches are independent: a failed batch leaves its threads unclassified
// (is_debate=false, confidence 0) and the rest of the run proceeds.
func (d *DebateIdentifier) Identify(ctx context.Context, username string, threads []*domain.DebateThread) error {
	for start := 0; start < len(threads); start += d.cfg.IdentifyBatchSize {
		end := start + d.cfg.IdentifyBatchSize
		if end > len(threads) {
			end = len(threads)
		}
		batch := threads[start:end]
		if err := d.identifyBatch(ctx, username, batch); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Int("batch_start", start).Msg("debate identification batch failed")
			for _, th := range batch {
				th.IsDebate = false
				th.Confidence = 0
			}
		}
	}
	debates := 0
	for _, th := range threads {
		if th.IsDebate {
			debates++
		}
	}
	log.Info().Str("username", username).Int("debates", debates).Int("threads", len(threads)).Msg("debate identification done")
	return nil
}

func (d *DebateIdentifier) identifyBatch(ctx context.Context, username string, batch []*domain.DebateThread) error {
	var b strings.Builder
	for _, th := range batch {
		b.WriteString(formatThreadForIdentification(th))
	}
	prompt := fmt.Sprintf(identifyPromptTemplate, username, b.String(), len(batch))

	raw, err := d.client.Analyze(ctx, identifySystemPrompt, prompt)
	if err != nil {
		return err
	}
	var resp identifyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("analysis: decode identification response: %w", err)
	}

	byID := make(map[string]*domain.DebateThread, len(batch))
	for _, th := range batch {
		byID[th.ThreadID] = th
	}
	for _, res := range resp.Debates {
		th, ok := byID[res.ThreadID]
		if !ok {
			continue
		}
		th.IsDebate = res.IsDebate
		th.Confidence = res.Confidence
		if res.IsDebate && res.Metadata != nil {
			cat := res.Metadata.TopicCategory
			if cat == "" {
				cat = "other"
			}
			th.Metadata = &domain.DebateMetadata{
				Topic:            res.Metadata.Topic,
				TopicCategory:    cat,
				UserPosition:     res.Metadata.UserPosition,
				OpponentPosition: res.Metadata.OpponentPosition,
				ExchangeDepth:    res.Metadata.ExchangeDepth,
				IsOngoing:        res.Metadata.IsOngoing,
				ApparentOutcome:  domain.ParseOutcome(res.Metadata.ApparentOutcome),
			}
		}
	}
	return nil
}

func formatThreadForIdentification(th *domain.DebateThread) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Thread: %s ===\n", th.ThreadID)
	fmt.Fprintf(&b, "Title: %s\n", truncate(th.ThreadTitle, 100))
	fmt.Fprintf(&b, "Subreddit: r/%s\n", th.Subreddit)
	fmt.Fprintf(&b, "User is OP: %v\n", th.UserIsOP)
	fmt.Fprintf(&b, "User comment count: %d\n\n", th.UserCommentCount())
	b.WriteString("User's comments:\n")
	b.WriteString(formatComments(th.UserComments, 10, 500))
	if len(th.OpponentComments) > 0 {
		b.WriteString("Opponent comments in exchange:\n")
		for i, c := range th.OpponentComments {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  u/%s [%s]:\n    %s\n\n", c.Author, c.ID, truncate(c.Body, 300))
		}
	}
	return b.String()
}
