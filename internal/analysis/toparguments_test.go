package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/erislabs/go-debate-backend/internal/domain"
)

func TestExtractTopArguments(t *testing.T) {
	client := &fakeClient{respond: respondJSON(`{
		"top_arguments": [
			{
				"rank": 7,
				"debate_id": "t1",
				"category": "best_evidenced",
				"title": "The Economic Case",
				"snippet": "The productivity data shows...",
				"full_context": {
					"subreddit": "economics",
					"thread_title": "Remote work debate",
					"opponent_position": "offices are better",
					"outcome": "Opponent conceded"
				},
				"quality_breakdown": {"structure": 85, "evidence": 92, "persuasiveness": 88, "civility": 90},
				"why_exceptional": "Hard data, direct rebuttal",
				"techniques_used": ["data-first opening"]
			},
			{
				"rank": 1,
				"debate_id": "t2",
				"category": "no_such_category",
				"title": "Second",
				"snippet": "..."
			}
		],
		"signature_techniques": [
			{"technique": "Data-First Opening", "description": "Opens with statistics", "frequency": "high", "effectiveness": "strong"}
		]
	}`)}
	analyzer := NewTopArgumentsAnalyzer(client, testAnalysisCfg())

	debates := []*domain.DebateThread{
		newDebate("t1", "economics", domain.OutcomeUserWon),
		newDebate("t2", "other", domain.OutcomeDraw),
	}
	qual := map[string]*domain.ArgumentQuality{
		"t1": quality("t1", 85, 92, 80, 88, 90),
		"t2": quality("t2", 50, 50, 50, 50, 50),
	}

	res, err := analyzer.ExtractTopArguments(context.Background(), "alice", debates, qual)
	if err != nil {
		t.Fatalf("ExtractTopArguments: %v", err)
	}
	if len(res.Arguments) != 2 {
		t.Fatalf("arguments = %d, want 2", len(res.Arguments))
	}

	// Ranks are reassigned in return order, whatever the response claimed.
	first := res.Arguments[0]
	if first.Rank != 1 || res.Arguments[1].Rank != 2 {
		t.Errorf("ranks = %d,%d, want 1,2", first.Rank, res.Arguments[1].Rank)
	}
	if first.Category != domain.CategoryBestEvidenced {
		t.Errorf("category = %q, want best_evidenced", first.Category)
	}
	if res.Arguments[1].Category != domain.CategoryMostPersuasive {
		t.Errorf("unknown category = %q, want most_persuasive", res.Arguments[1].Category)
	}
	if first.Subreddit != "economics" || first.Outcome != "Opponent conceded" {
		t.Errorf("context not mapped: %+v", first)
	}
	if first.Quality.Evidence != 92 {
		t.Errorf("quality breakdown = %+v", first.Quality)
	}
	if len(res.Techniques) != 1 || res.Techniques[0].Technique != "Data-First Opening" {
		t.Errorf("techniques = %+v", res.Techniques)
	}
}

func TestExtractTopArguments_CapsOutput(t *testing.T) {
	var args []string
	for i := 0; i < 12; i++ {
		args = append(args, `{"debate_id": "t1", "category": "most_civil", "title": "a", "snippet": "b"}`)
	}
	client := &fakeClient{respond: respondJSON(`{"top_arguments": [` + strings.Join(args, ",") + `]}`)}
	cfg := testAnalysisCfg()
	cfg.TopArgumentsMaxOut = 10
	analyzer := NewTopArgumentsAnalyzer(client, cfg)

	res, err := analyzer.ExtractTopArguments(context.Background(), "alice", nil, nil)
	if err != nil {
		t.Fatalf("ExtractTopArguments: %v", err)
	}
	if len(res.Arguments) != 10 {
		t.Fatalf("arguments = %d, want 10", len(res.Arguments))
	}
	if res.Arguments[9].Rank != 10 {
		t.Errorf("last rank = %d, want 10", res.Arguments[9].Rank)
	}
}

func TestFormatDebateDetails_OrdersByQuality(t *testing.T) {
	weak := newDebate("weak", "other", domain.OutcomeDraw)
	strong := newDebate("strong", "other", domain.OutcomeUserWon)
	qual := map[string]*domain.ArgumentQuality{
		"weak":   quality("weak", 40, 40, 40, 40, 40),
		"strong": quality("strong", 90, 90, 90, 90, 90),
	}

	out := formatDebateDetails([]*domain.DebateThread{weak, strong}, qual, 20)
	si := strings.Index(out, "### Thread: strong")
	wi := strings.Index(out, "### Thread: weak")
	if si < 0 || wi < 0 || si > wi {
		t.Fatalf("strong thread not first:\n%s", out)
	}

	// maxDebates trims the weaker tail.
	out = formatDebateDetails([]*domain.DebateThread{weak, strong}, qual, 1)
	if strings.Contains(out, "### Thread: weak") {
		t.Fatalf("weak thread not trimmed:\n%s", out)
	}
}
