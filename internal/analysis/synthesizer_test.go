package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/erislabs/go-debate-backend/internal/domain"
)

// dispatchResponses answers each analyzer by recognizing its prompt. The
// synthesizer fans calls out concurrently, so call order is not stable.
func dispatchResponses(t *testing.T) func(int, string, string) (json.RawMessage, error) {
	t.Helper()
	return func(_ int, system, prompt string) (json.RawMessage, error) {
		switch {
		case strings.Contains(prompt, "logical fallacies committed by the user"):
			return json.RawMessage(`{
				"fallacies_detected": [
					{"type": "strawman", "confidence": 0.9, "severity": "moderate", "comment_id": "c1"}
				],
				"overall_fallacy_density": "low"
			}`), nil
		case strings.Contains(prompt, "argues in good faith"):
			return json.RawMessage(`{
				"good_faith_score": 78,
				"assessment": "generally_good_faith",
				"positive_indicators": ["maintains civility"],
				"summary": "Generally honest debater."
			}`), nil
		case strings.Contains(prompt, "Archetype Classification"):
			return json.RawMessage(`{
				"primary_archetype": {"type": "analyst", "confidence": 0.8},
				"archetype_blend": "Analyst"
			}`), nil
		case strings.Contains(prompt, "MBTI Inference"):
			return json.RawMessage(`{"mbti_type": "ENTP", "confidence": 0.6}`), nil
		case strings.Contains(prompt, "TOP ARGUMENTS"):
			return json.RawMessage(`{
				"top_arguments": [
					{"rank": 1, "debate_id": "t1", "category": "best_structured", "title": "a", "snippet": "b"}
				],
				"signature_techniques": [
					{"technique": "Premise Numbering", "description": "numbers premises", "frequency": "moderate"}
				]
			}`), nil
		case strings.Contains(prompt, "topic expertise"):
			return json.RawMessage(`{
				"expertise_map": [
					{"topic": "Science", "level": "advanced", "score": 80, "debate_count": 2}
				],
				"knowledge_profile": {"breadth": "narrow", "depth": "deep"}
			}`), nil
		default:
			return nil, fmt.Errorf("unexpected prompt: %.80s", prompt)
		}
	}
}

func TestSynthesize_FullProfile(t *testing.T) {
	client := &fakeClient{respond: dispatchResponses(t)}
	syn := NewProfileSynthesizer(client, testAnalysisCfg())

	debates := []*domain.DebateThread{
		newDebate("t1", "science", domain.OutcomeUserWon),
		newDebate("t2", "science", domain.OutcomeOpponentWon),
	}
	q1 := quality("t1", 80, 90, 70, 60, 85)
	q1.ChangedOpponentMind = true
	q1.IsTopArgumentCandidate = true
	qual := map[string]*domain.ArgumentQuality{
		"t1": q1,
		"t2": quality("t2", 60, 70, 50, 40, 75),
	}

	profile, err := syn.Synthesize(context.Background(), "alice", debates, qual, true)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if profile.Username != "alice" || profile.AnalyzedAt.IsZero() {
		t.Fatalf("identity not set: %+v", profile)
	}
	if profile.DebatesAnalyzed != 2 || profile.TotalComments != 6 {
		t.Errorf("counts = %d debates, %d comments, want 2, 6", profile.DebatesAnalyzed, profile.TotalComments)
	}
	// Overall scores 77 and 59 -> mean 68.
	if profile.OverallScore != 68 {
		t.Errorf("OverallScore = %d, want 68", profile.OverallScore)
	}
	if profile.QualityBreakdown.Evidence != 80 {
		t.Errorf("QualityBreakdown = %+v", profile.QualityBreakdown)
	}

	if profile.Archetype == nil || profile.Archetype.Primary.Type != domain.ArchetypeAnalyst {
		t.Errorf("archetype = %+v", profile.Archetype)
	}
	if profile.MBTI == nil || profile.MBTI.Type != "ENTP" {
		t.Errorf("mbti = %+v", profile.MBTI)
	}
	if profile.Fallacies == nil || profile.Fallacies.TotalFallacies != 2 {
		t.Errorf("fallacies = %+v", profile.Fallacies)
	}
	if profile.GoodFaith == nil || profile.GoodFaith.Score != 78 {
		t.Errorf("good faith = %+v", profile.GoodFaith)
	}
	if len(profile.TopArguments) != 1 || len(profile.SignatureTechniques) != 1 {
		t.Errorf("top arguments = %d, techniques = %d", len(profile.TopArguments), len(profile.SignatureTechniques))
	}
	if len(profile.TopicExpertise) != 1 || profile.KnowledgeProfile == nil {
		t.Errorf("expertise = %+v, profile = %+v", profile.TopicExpertise, profile.KnowledgeProfile)
	}

	if len(profile.Debates) != 2 {
		t.Fatalf("debate summaries = %d, want 2", len(profile.Debates))
	}
	first := profile.Debates[0]
	if first.ThreadID != "t1" || !first.ChangedMind || !first.IsTopArgument {
		t.Errorf("summary t1 = %+v", first)
	}
	if first.Outcome != domain.OutcomeUserWon || first.Quality == nil {
		t.Errorf("summary t1 metadata = %+v", first)
	}

	// Two fallacy calls (one per debate) plus good faith, archetype, MBTI,
	// top arguments, and expertise.
	if got := client.callCount(); got != 7 {
		t.Errorf("calls = %d, want 7", got)
	}
}

func TestSynthesize_GoodFaithSeesFallacyStats(t *testing.T) {
	client := &fakeClient{respond: dispatchResponses(t)}
	syn := NewProfileSynthesizer(client, testAnalysisCfg())

	debates := []*domain.DebateThread{newDebate("t1", "other", domain.OutcomeOpponentWon)}
	q1 := quality("t1", 80, 90, 70, 60, 85)
	q1.ChangedOpponentMind = true

	_, err := syn.Synthesize(context.Background(), "alice", debates, map[string]*domain.ArgumentQuality{"t1": q1}, true)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	var gfPrompt string
	for i := 0; i < client.callCount(); i++ {
		if c := client.call(i); strings.Contains(c.Prompt, "argues in good faith") {
			gfPrompt = c.Prompt
		}
	}
	if gfPrompt == "" {
		t.Fatal("good faith prompt never sent")
	}
	for _, want := range []string{
		"Average civility score: 85",
		"Changed opponent's mind: 1 times",
		"Conceded to opponent: 1 times",
		"Fallacy density: low",
		"Consistently maintains high civility",
		"Low fallacy rate indicates careful reasoning",
	} {
		if !strings.Contains(gfPrompt, want) {
			t.Errorf("good faith prompt missing %q:\n%s", want, gfPrompt)
		}
	}
}

func TestSynthesize_SkipsAnalysesWithoutDebates(t *testing.T) {
	client := &fakeClient{respond: dispatchResponses(t)}
	syn := NewProfileSynthesizer(client, testAnalysisCfg())

	profile, err := syn.Synthesize(context.Background(), "alice", nil, nil, true)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if client.callCount() != 0 {
		t.Fatalf("calls = %d, want 0", client.callCount())
	}
	if profile.OverallScore != 0 || profile.Archetype != nil || profile.Fallacies != nil {
		t.Errorf("empty profile carries analysis results: %+v", profile)
	}
}

func TestSynthesize_FailedAnalyzerLeavesSectionEmpty(t *testing.T) {
	client := &fakeClient{respond: func(_ int, _, prompt string) (json.RawMessage, error) {
		if strings.Contains(prompt, "topic expertise") {
			return nil, errFakeBoom
		}
		return dispatchResponses(t)(0, "", prompt)
	}}
	syn := NewProfileSynthesizer(client, testAnalysisCfg())

	profile, err := syn.Synthesize(context.Background(), "alice",
		[]*domain.DebateThread{newDebate("t1", "other", domain.OutcomeDraw)},
		map[string]*domain.ArgumentQuality{"t1": quality("t1", 50, 50, 50, 50, 50)}, true)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if profile.TopicExpertise != nil || profile.KnowledgeProfile != nil {
		t.Errorf("expertise should be empty after failure: %+v", profile.TopicExpertise)
	}
	// Every other section survives the expertise failure.
	if profile.Archetype == nil || profile.MBTI == nil {
		t.Errorf("archetype/mbti discarded: %+v / %+v", profile.Archetype, profile.MBTI)
	}
	if profile.Fallacies == nil || profile.GoodFaith == nil {
		t.Errorf("fallacies/good faith discarded: %+v / %+v", profile.Fallacies, profile.GoodFaith)
	}
	if len(profile.TopArguments) != 1 {
		t.Errorf("top arguments discarded: %+v", profile.TopArguments)
	}
}

func TestSynthesize_ArchetypeFailureKeepsMBTI(t *testing.T) {
	client := &fakeClient{respond: func(_ int, _, prompt string) (json.RawMessage, error) {
		if strings.Contains(prompt, "Archetype Classification") {
			return nil, errFakeBoom
		}
		return dispatchResponses(t)(0, "", prompt)
	}}
	syn := NewProfileSynthesizer(client, testAnalysisCfg())

	profile, err := syn.Synthesize(context.Background(), "alice",
		[]*domain.DebateThread{newDebate("t1", "other", domain.OutcomeDraw)},
		map[string]*domain.ArgumentQuality{"t1": quality("t1", 50, 50, 50, 50, 50)}, true)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if profile.Archetype != nil {
		t.Errorf("archetype should be empty after failure: %+v", profile.Archetype)
	}
	if profile.MBTI == nil || profile.MBTI.Type != "ENTP" {
		t.Errorf("mbti discarded with archetype: %+v", profile.MBTI)
	}
}

func TestAssessGoodFaith_NoFallacyProfile(t *testing.T) {
	client := &fakeClient{respond: dispatchResponses(t)}
	syn := NewProfileSynthesizer(client, testAnalysisCfg())

	gf, err := syn.assessGoodFaith(context.Background(), "alice",
		[]*domain.DebateThread{newDebate("t1", "other", domain.OutcomeDraw)},
		map[string]*domain.ArgumentQuality{"t1": quality("t1", 50, 50, 50, 50, 50)}, nil)
	if err != nil {
		t.Fatalf("assessGoodFaith: %v", err)
	}
	if gf == nil || gf.Score != 78 {
		t.Fatalf("assessment should still run without fallacy stats: %+v", gf)
	}
	if prompt := client.call(0).Prompt; !strings.Contains(prompt, "Fallacy density: unknown") {
		t.Errorf("prompt should mark density unknown:\n%s", prompt)
	}
}

func TestSynthesize_CancelledContextFails(t *testing.T) {
	client := &fakeClient{respond: dispatchResponses(t)}
	syn := NewProfileSynthesizer(client, testAnalysisCfg())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := syn.Synthesize(ctx, "alice",
		[]*domain.DebateThread{newDebate("t1", "other", domain.OutcomeDraw)},
		map[string]*domain.ArgumentQuality{"t1": quality("t1", 50, 50, 50, 50, 50)}, true)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestSynthesize_LocalOnly(t *testing.T) {
	client := &fakeClient{}
	syn := NewProfileSynthesizer(client, testAnalysisCfg())

	debates := []*domain.DebateThread{newDebate("t1", "other", domain.OutcomeDraw)}
	profile, err := syn.Synthesize(context.Background(), "alice", debates,
		map[string]*domain.ArgumentQuality{"t1": quality("t1", 50, 50, 50, 50, 50)}, false)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if client.callCount() != 0 {
		t.Fatalf("calls = %d, want 0 with analyses disabled", client.callCount())
	}
	if profile.OverallScore != 50 || len(profile.Debates) != 1 {
		t.Errorf("profile = %+v", profile)
	}
}
