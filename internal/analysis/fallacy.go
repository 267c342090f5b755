package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/domain"
	"github.com/erislabs/go-debate-backend/internal/reasoning"
)

const fallacySystemPrompt = `You are an expert in logic, critical thinking, and informal fallacies.

You identify logical fallacies in online debates with precision, distinguishing between:
- Clear fallacies (high confidence)
- Borderline cases (medium confidence)
- Stylistic choices that aren't true fallacies

You understand that colloquial speech often uses rhetorical shortcuts that aren't
technically fallacious in context. You focus on substantive logical errors that
actually weaken arguments.

Always respond with valid JSON matching the requested schema.`

const fallacyPromptTemplate = `Analyze this debate for logical fallacies committed by the user.

## Debate Context
- Thread: %s
- Subreddit: r/%s
- Topic: %s
- User position: %s
- Opponent position: %s

## User's Arguments
%s

## Opponent's Arguments (for context)
%s

## Fallacy Analysis Required

Identify ALL logical fallacies in the USER's arguments. For each fallacy found:

1. **Type**: Classify the fallacy type
2. **Confidence**: How certain are you this is a fallacy? (0.0-1.0)
3. **Severity**: How much does it weaken the argument?
4. **Quote**: The exact user statement containing the fallacy
5. **Explanation**: Why this is a fallacy
6. **Context**: What the user was responding to

## Fallacy Taxonomy

**Relevance**: ad_hominem, strawman, red_herring, appeal_to_authority, appeal_to_emotion,
appeal_to_nature, appeal_to_tradition, tu_quoque, whataboutism, genetic_fallacy
**Presumption**: begging_the_question, false_dichotomy, loaded_question, no_true_scotsman,
hasty_generalization, slippery_slope, false_cause, post_hoc
**Ambiguity**: equivocation, amphiboly, composition, division
**Bad faith**: moving_goalposts, sealioning, gish_gallop, motte_and_bailey, kafka_trap

## Required JSON Output

{
    "thread_id": "%s",
    "fallacies_detected": [
        {
            "type": "strawman",
            "confidence": 0.85,
            "severity": "moderate",
            "user_statement": "So you're saying we should just let everyone starve?",
            "opponent_context": "I suggested reducing food stamp eligibility slightly",
            "explanation": "Exaggerates opponent's position to an extreme they didn't advocate",
            "comment_id": "abc123"
        }
    ],
    "overall_fallacy_density": "low",
    "notes": "User generally argues in good faith with occasional rhetorical overreach"
}

Severity levels: minor, moderate, significant, severe.
Fallacy density: none, low, moderate, high, very_high.

Be precise. Only flag clear fallacies, not mere rhetorical flourishes or valid arguments
you personally disagree with.`

// FallacyAnalyzer detects per-debate fallacies and aggregates them into a
// user-level profile. Detections below the configured confidence floor are
// discarded.
type FallacyAnalyzer struct {
	client    reasoning.Client
	confFloor float64
}

// NewFallacyAnalyzer builds an analyzer from config.
func NewFallacyAnalyzer(client reasoning.Client, cfg config.AnalysisConfig) *FallacyAnalyzer {
	return &FallacyAnalyzer{client: client, confFloor: cfg.FallacyConfFloor}
}

// DebateFallacies is the per-debate detection result.
type DebateFallacies struct {
	ThreadID  string
	Instances []domain.FallacyInstance
	Density   domain.DensityLevel
}

type fallacyResponse struct {
	ThreadID  string `json:"thread_id"`
	Fallacies []struct {
		Type            string  `json:"type"`
		Confidence      float64 `json:"confidence"`
		Severity        string  `json:"severity"`
		UserStatement   string  `json:"user_statement"`
		OpponentContext string  `json:"opponent_context"`
		Explanation     string  `json:"explanation"`
		CommentID       string  `json:"comment_id"`
	} `json:"fallacies_detected"`
	Density string `json:"overall_fallacy_density"`
	Notes   string `json:"notes"`
}

// AnalyzeDebate detects fallacies in one thread.
func (a *FallacyAnalyzer) AnalyzeDebate(ctx context.Context, th *domain.DebateThread) (*DebateFallacies, error) {
	topic, userPos, oppPos := threadContext(th)
	prompt := fmt.Sprintf(fallacyPromptTemplate,
		truncate(th.ThreadTitle, 100), th.Subreddit, topic, userPos, oppPos,
		formatComments(th.UserComments, 10, 600),
		formatComments(th.OpponentComments, 10, 600),
		th.ThreadID,
	)

	raw, err := a.client.Analyze(ctx, fallacySystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var resp fallacyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("analysis: decode fallacy response: %w", err)
	}

	out := &DebateFallacies{ThreadID: th.ThreadID, Density: domain.DensityLevel(resp.Density)}
	if out.Density == "" {
		out.Density = domain.DensityLow
	}
	for _, f := range resp.Fallacies {
		if f.Confidence < a.confFloor {
			continue
		}
		out.Instances = append(out.Instances, domain.FallacyInstance{
			ID:              uuid.NewString(),
			Type:            domain.ParseFallacyType(f.Type),
			Confidence:      f.Confidence,
			Severity:        domain.ParseFallacySeverity(f.Severity),
			UserStatement:   f.UserStatement,
			OpponentContext: f.OpponentContext,
			Explanation:     f.Explanation,
			DebateID:        th.ThreadID,
			CommentID:       f.CommentID,
		})
	}
	return out, nil
}

// AnalyzeDebates detects fallacies across all identified debates, skipping
// threads whose analysis fails.
func (a *FallacyAnalyzer) AnalyzeDebates(ctx context.Context, threads []*domain.DebateThread) ([]*DebateFallacies, error) {
	var results []*DebateFallacies
	for _, th := range threads {
		if !th.IsDebate {
			continue
		}
		res, err := a.AnalyzeDebate(ctx, th)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			log.Warn().Err(err).Str("thread_id", th.ThreadID).Msg("fallacy analysis failed")
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// BuildProfile aggregates per-debate results into the user-level fallacy
// profile: totals, per-type and per-severity counts, the ranked type list
// with up to five example instances each, and the re-bucketed density
// average. Zero detected fallacies is a valid outcome.
func BuildProfile(results []*DebateFallacies) *domain.FallacyProfile {
	profile := &domain.FallacyProfile{
		FallacyCounts:     make(map[domain.FallacyType]int),
		FallacyBySeverity: make(map[domain.FallacySeverity]int),
		AvgDensity:        domain.DensityLow,
	}

	var all []domain.FallacyInstance
	densitySum := 0
	for _, res := range results {
		all = append(all, res.Instances...)
		densitySum += res.Density.Rank()
		for _, f := range res.Instances {
			profile.FallacyCounts[f.Type]++
			profile.FallacyBySeverity[f.Severity]++
		}
	}
	profile.TotalFallacies = len(all)

	if len(results) > 0 {
		profile.AvgDensity = domain.BucketDensity(float64(densitySum) / float64(len(results)))
	}

	// Rank types by occurrence count.
	types := make([]domain.FallacyType, 0, len(profile.FallacyCounts))
	for t := range profile.FallacyCounts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if profile.FallacyCounts[types[i]] != profile.FallacyCounts[types[j]] {
			return profile.FallacyCounts[types[i]] > profile.FallacyCounts[types[j]]
		}
		return types[i] < types[j]
	})

	for _, t := range types {
		var instances []domain.FallacyInstance
		weightSum := 0
		n := 0
		for _, f := range all {
			if f.Type != t {
				continue
			}
			n++
			weightSum += f.Severity.Weight()
			if len(instances) < 5 {
				instances = append(instances, f)
			}
		}
		profile.RankedFallacies = append(profile.RankedFallacies, domain.RankedFallacy{
			Type:        t,
			Count:       n,
			Percentage:  round1(float64(n) / float64(profile.TotalFallacies) * 100),
			AvgSeverity: round2(float64(weightSum) / float64(n)),
			Instances:   instances,
		})
	}

	switch {
	case profile.TotalFallacies == 0:
		profile.Notes = "No logical fallacies detected in analyzed debates."
	case profile.AvgDensity == domain.DensityLow || profile.AvgDensity == domain.DensityNone:
		profile.Notes = "Occasional logical missteps but generally sound reasoning."
	case profile.AvgDensity == domain.DensityModerate:
		profile.Notes = "Regular use of fallacious reasoning weakens overall argument quality."
	default:
		profile.Notes = "Frequent fallacies significantly undermine argument credibility."
	}
	return profile
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round2(f float64) float64 { return math.Round(f*100) / 100 }
