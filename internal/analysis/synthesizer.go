package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/domain"
	"github.com/erislabs/go-debate-backend/internal/reasoning"
)

const goodFaithSystemPrompt = `You assess good faith in online debates based on behavioral patterns.`

const goodFaithPromptTemplate = `Assess whether this debater argues in good faith based on their debate history.

## User: u/%s

## Debate Statistics
- Total debates analyzed: %d
- Average civility score: %.0f
- Changed opponent's mind: %d times
- Conceded to opponent: %d times
- Fallacy density: %s

## Behavioral Patterns
%s

## Good Faith Indicators

**Positive Signals:**
- Acknowledges valid opponent points
- Updates position based on new evidence
- Steelmans opponent arguments
- Maintains civility under pressure
- Admits uncertainty or mistakes

**Negative Signals:**
- Frequent strawmanning
- Moving goalposts
- Personal attacks
- Sealioning or bad-faith questioning
- Never concedes any points

## Required JSON Output

{
    "good_faith_score": 78,
    "assessment": "generally_good_faith",
    "positive_indicators": [
        "High civility scores across debates",
        "Occasionally concedes valid points"
    ],
    "negative_indicators": [
        "Sometimes misrepresents opponent positions"
    ],
    "summary": "This debater generally argues in good faith with occasional rhetorical overreach."
}

Assessment levels: exemplary, generally_good_faith, mixed, questionable, bad_faith`

// ProfileSynthesizer runs the per-user analyzers and assembles their
// results into one SynthesizedProfile.
type ProfileSynthesizer struct {
	client     reasoning.Client
	fallacies  *FallacyAnalyzer
	archetypes *ArchetypeAnalyzer
	topArgs    *TopArgumentsAnalyzer
	expertise  *ExpertiseAnalyzer
}

// NewProfileSynthesizer builds a synthesizer owning one instance of each
// analyzer.
func NewProfileSynthesizer(client reasoning.Client, cfg config.AnalysisConfig) *ProfileSynthesizer {
	return &ProfileSynthesizer{
		client:     client,
		fallacies:  NewFallacyAnalyzer(client, cfg),
		archetypes: NewArchetypeAnalyzer(client),
		topArgs:    NewTopArgumentsAnalyzer(client, cfg),
		expertise:  NewExpertiseAnalyzer(client),
	}
}

// Synthesize runs every analyzer over the identified debates and combines
// the results. The analyses run concurrently and fail independently: an
// analyzer error leaves its section of the profile empty and the rest of
// the profile intact. The good-faith assessment waits on the fallacy
// profile it consumes but proceeds without one when fallacy analysis
// failed. When runAllAnalyses is false, or no debates survived
// identification, only the locally computable statistics are filled in.
func (s *ProfileSynthesizer) Synthesize(ctx context.Context, username string, debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality, runAllAnalyses bool) (*domain.SynthesizedProfile, error) {
	log.Info().Str("username", username).Int("debates", len(debates)).Msg("synthesizing profile")

	profile := &domain.SynthesizedProfile{
		Username:         username,
		AnalyzedAt:       time.Now().UTC(),
		OverallScore:     meanOverall(quality),
		DebatesAnalyzed:  len(debates),
		TotalComments:    totalUserComments(debates),
		QualityBreakdown: roundedAverages(quality),
		Debates:          buildDebateSummaries(debates, quality),
	}

	if !runAllAnalyses || len(debates) == 0 {
		return profile, nil
	}

	// No shared cancellation: one analyzer failing must not abort the
	// others, so the group only joins the goroutines. Each goroutine writes
	// a disjoint set of profile fields and logs its own failure.
	var g errgroup.Group

	g.Go(func() error {
		fallacyResults, err := s.fallacies.AnalyzeDebates(ctx, debates)
		if err != nil {
			logAnalyzerFailure(username, "fallacies", err)
		} else {
			profile.Fallacies = BuildProfile(fallacyResults)
		}
		gf, err := s.assessGoodFaith(ctx, username, debates, quality, profile.Fallacies)
		if err != nil {
			logAnalyzerFailure(username, "good_faith", err)
			return nil
		}
		profile.GoodFaith = gf
		return nil
	})
	g.Go(func() error {
		res, err := s.archetypes.ClassifyArchetype(ctx, username, debates, quality)
		if err != nil {
			logAnalyzerFailure(username, "archetype", err)
			return nil
		}
		profile.Archetype = res
		return nil
	})
	g.Go(func() error {
		res, err := s.archetypes.InferMBTI(ctx, username, debates, quality)
		if err != nil {
			logAnalyzerFailure(username, "mbti", err)
			return nil
		}
		profile.MBTI = res
		return nil
	})
	g.Go(func() error {
		res, err := s.topArgs.ExtractTopArguments(ctx, username, debates, quality)
		if err != nil {
			logAnalyzerFailure(username, "top_arguments", err)
			return nil
		}
		profile.TopArguments = res.Arguments
		profile.SignatureTechniques = res.Techniques
		return nil
	})
	g.Go(func() error {
		res, err := s.expertise.AnalyzeExpertise(ctx, username, debates, quality)
		if err != nil {
			logAnalyzerFailure(username, "expertise", err)
			return nil
		}
		profile.TopicExpertise = res.Topics
		profile.KnowledgeProfile = &res.Profile
		return nil
	})

	_ = g.Wait()

	// A cancelled run is fatal; everything else degraded gracefully above.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis: synthesize profile for %s: %w", username, err)
	}
	return profile, nil
}

// logAnalyzerFailure records a degraded section. The profile still ships,
// minus the failed analyzer's output.
func logAnalyzerFailure(username, analyzer string, err error) {
	log.Warn().Err(err).Str("username", username).Str("analyzer", analyzer).Msg("analyzer failed, section omitted")
}

type goodFaithResponse struct {
	Score              int      `json:"good_faith_score"`
	Assessment         string   `json:"assessment"`
	PositiveIndicators []string `json:"positive_indicators"`
	NegativeIndicators []string `json:"negative_indicators"`
	Summary            string   `json:"summary"`
}

// assessGoodFaith feeds locally computed behavior statistics to the
// reasoning service. Mind changes and concessions come from the quality and
// identification results, never from re-reading the comments.
func (s *ProfileSynthesizer) assessGoodFaith(ctx context.Context, username string, debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality, fallacies *domain.FallacyProfile) (*domain.GoodFaithAssessment, error) {
	avgCivility := 50.0
	mindChanges := 0
	if len(quality) > 0 {
		sum := 0
		for _, q := range quality {
			sum += q.Civility.Score
			if q.ChangedOpponentMind {
				mindChanges++
			}
		}
		avgCivility = float64(sum) / float64(len(quality))
	}
	concessions := 0
	for _, d := range debates {
		if d.Metadata != nil && d.Metadata.ApparentOutcome == domain.OutcomeOpponentWon {
			concessions++
		}
	}

	var patterns []string
	if avgCivility >= 80 {
		patterns = append(patterns, "Consistently maintains high civility")
	} else if avgCivility < 60 {
		patterns = append(patterns, "Civility issues in some debates")
	}
	if mindChanges > 0 {
		patterns = append(patterns, fmt.Sprintf("Changed opponent's mind %d times", mindChanges))
	}
	// The fallacy profile is nil when that analyzer failed; assess on the
	// remaining statistics.
	density := domain.DensityLevel("unknown")
	if fallacies != nil {
		density = fallacies.AvgDensity
		switch fallacies.AvgDensity {
		case domain.DensityHigh, domain.DensityVeryHigh:
			patterns = append(patterns, "High frequency of logical fallacies")
		case domain.DensityLow:
			patterns = append(patterns, "Low fallacy rate indicates careful reasoning")
		}
		if n := fallacies.FallacyCounts[domain.FallacyStrawman]; n >= 3 {
			patterns = append(patterns, fmt.Sprintf("Strawman fallacy detected %d times", n))
		}
	}

	var lines strings.Builder
	for _, p := range patterns {
		fmt.Fprintf(&lines, "- %s\n", p)
	}

	prompt := fmt.Sprintf(goodFaithPromptTemplate,
		username, len(debates), avgCivility, mindChanges, concessions,
		density, lines.String())

	raw, err := s.client.Analyze(ctx, goodFaithSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var resp goodFaithResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("analysis: decode good faith response: %w", err)
	}

	return &domain.GoodFaithAssessment{
		Score:              resp.Score,
		Assessment:         defaultStr(resp.Assessment, "mixed"),
		PositiveIndicators: resp.PositiveIndicators,
		NegativeIndicators: resp.NegativeIndicators,
		Summary:            resp.Summary,
	}, nil
}

// meanOverall averages the locally recomputed overall scores. No quality
// records yields zero.
func meanOverall(quality map[string]*domain.ArgumentQuality) int {
	if len(quality) == 0 {
		return 0
	}
	sum := 0
	for _, q := range quality {
		sum += q.OverallScore
	}
	return sum / len(quality)
}

func totalUserComments(debates []*domain.DebateThread) int {
	total := 0
	for _, d := range debates {
		total += d.UserCommentCount()
	}
	return total
}

func roundedAverages(quality map[string]*domain.ArgumentQuality) domain.QualityAverages {
	avg := averageQuality(quality)
	avg.Structure = round1(avg.Structure)
	avg.Evidence = round1(avg.Evidence)
	avg.Counterargument = round1(avg.Counterargument)
	avg.Persuasiveness = round1(avg.Persuasiveness)
	avg.Civility = round1(avg.Civility)
	return avg
}

func buildDebateSummaries(debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality) []domain.DebateSummary {
	summaries := make([]domain.DebateSummary, 0, len(debates))
	for _, d := range debates {
		s := domain.DebateSummary{
			ThreadID:         d.ThreadID,
			ThreadTitle:      truncate(d.ThreadTitle, 100),
			Subreddit:        d.Subreddit,
			UserCommentCount: d.UserCommentCount(),
			UserIsOP:         d.UserIsOP,
		}
		if d.Metadata != nil {
			s.Topic = d.Metadata.Topic
			s.TopicCategory = d.Metadata.TopicCategory
			s.UserPosition = d.Metadata.UserPosition
			s.OpponentPosition = d.Metadata.OpponentPosition
			s.Outcome = d.Metadata.ApparentOutcome
		}
		if q := quality[d.ThreadID]; q != nil {
			s.Quality = q
			s.IsTopArgument = q.IsTopArgumentCandidate
			s.ChangedMind = q.ChangedOpponentMind
		}
		summaries = append(summaries, s)
	}
	return summaries
}
