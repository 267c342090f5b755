package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/domain"
	"github.com/erislabs/go-debate-backend/internal/reasoning"
)

const qualitySystemPrompt = `You are an expert rhetoric and argumentation analyst.

You analyze online debates with precision, evaluating:
- Logical structure and reasoning quality
- Evidence usage and citation quality
- Counterargument engagement
- Persuasiveness and outcomes
- Civility and tone

You provide objective, balanced assessments that help understand debate quality.
Always respond with valid JSON matching the requested schema.`

const qualityPromptTemplate = `Analyze the argument quality in this debate exchange.

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

## Analysis Required

Evaluate the USER's argumentation quality across these dimensions:

1. **Structure (0-100)**: Logical organization, clear thesis, premise-conclusion chains
2. **Evidence (0-100)**: Citation frequency, source quality, proper contextualization
3. **Counterargument Engagement (0-100)**: Addresses opponent points, steelmans vs strawmans
4. **Persuasiveness (0-100)**: Effectiveness at making case, any mind-changing
5. **Civility (0-100)**: Respectful tone, no personal attacks

Also identify any logical fallacies committed by the user.

## Required JSON Output

{
    "debate_id": "%s",
    "structure": {"score": 82, "notes": "Well-organized with numbered points"},
    "evidence": {
        "score": 75,
        "citation_count": 2,
        "citations": [
            {"claim": "The claim being supported", "source": "Source cited",
             "source_type": "academic|journalistic|primary|anecdotal", "properly_contextualized": true}
        ],
        "notes": "Good use of data, could use more primary sources"
    },
    "counterargument_engagement": {
        "score": 70,
        "addresses_opponent_points": true,
        "steelmans_opponent": false,
        "strawmans_opponent": false,
        "notes": "Engages most points but missed one key objection"
    },
    "persuasiveness": {
        "score": 85,
        "changed_opponent_mind": true,
        "opponent_concession_quote": "You make a good point about...",
        "notes": "Successfully shifted opponent's view"
    },
    "civility": {
        "score": 95,
        "personal_attacks": false,
        "condescension": false,
        "notes": "Maintained professional tone"
    },
    "fallacies": [
        {
            "type": "hasty_generalization",
            "confidence": 0.75,
            "severity": "minor",
            "user_statement": "All companies saw productivity gains",
            "explanation": "Overgeneralizes from limited examples"
        }
    ],
    "is_top_argument_candidate": true,
    "top_argument_reasons": ["Strong evidence usage", "Changed opponent's mind"]
}

Fallacy types: ad_hominem, strawman, false_dichotomy, appeal_to_authority, appeal_to_emotion,
hasty_generalization, slippery_slope, red_herring, circular_reasoning, moving_goalposts,
no_true_scotsman, whataboutism, false_cause, appeal_to_nature, sealioning, gish_gallop

Severity levels: minor, moderate, significant, severe`

// QualityAnalyzer scores a single debate across five dimensions and carries
// any fallacies the scoring pass noticed in-line. The overall score is
// always computed locally from the configured weights.
type QualityAnalyzer struct {
	client  reasoning.Client
	weights domain.Weights
}

// NewQualityAnalyzer builds an analyzer using the configured quality weights.
func NewQualityAnalyzer(client reasoning.Client, cfg config.AnalysisConfig) *QualityAnalyzer {
	return &QualityAnalyzer{client: client, weights: cfg.QualityWeights}
}

type qualityResponse struct {
	DebateID  string `json:"debate_id"`
	Structure struct {
		Score int    `json:"score"`
		Notes string `json:"notes"`
	} `json:"structure"`
	Evidence struct {
		Score         int    `json:"score"`
		CitationCount int    `json:"citation_count"`
		Citations     []struct {
			Claim                  string `json:"claim"`
			Source                 string `json:"source"`
			SourceType             string `json:"source_type"`
			ProperlyContextualized bool   `json:"properly_contextualized"`
		} `json:"citations"`
		Notes string `json:"notes"`
	} `json:"evidence"`
	Counterargument struct {
		Score                   int    `json:"score"`
		AddressesOpponentPoints bool   `json:"addresses_opponent_points"`
		SteelmansOpponent       bool   `json:"steelmans_opponent"`
		StrawmansOpponent       bool   `json:"strawmans_opponent"`
		Notes                   string `json:"notes"`
	} `json:"counterargument_engagement"`
	Persuasiveness struct {
		Score                   int    `json:"score"`
		ChangedOpponentMind     bool   `json:"changed_opponent_mind"`
		OpponentConcessionQuote string `json:"opponent_concession_quote"`
		Notes                   string `json:"notes"`
	} `json:"persuasiveness"`
	Civility struct {
		Score           int    `json:"score"`
		PersonalAttacks bool   `json:"personal_attacks"`
		Condescension   bool   `json:"condescension"`
		Notes           string `json:"notes"`
	} `json:"civility"`
	Fallacies []struct {
		Type          string  `json:"type"`
		Confidence    float64 `json:"confidence"`
		Severity      string  `json:"severity"`
		UserStatement string  `json:"user_statement"`
		Explanation   string  `json:"explanation"`
	} `json:"fallacies"`
	IsTopArgumentCandidate bool     `json:"is_top_argument_candidate"`
	TopArgumentReasons     []string `json:"top_argument_reasons"`
}

// AnalyzeDebate scores one thread.
func (a *QualityAnalyzer) AnalyzeDebate(ctx context.Context, th *domain.DebateThread) (*domain.ArgumentQuality, error) {
	topic, userPos, oppPos := threadContext(th)
	prompt := fmt.Sprintf(qualityPromptTemplate,
		truncate(th.ThreadTitle, 100), th.Subreddit, topic, userPos, oppPos,
		formatComments(th.UserComments, 10, 800),
		formatComments(th.OpponentComments, 10, 800),
		th.ThreadID,
	)

	raw, err := a.client.Analyze(ctx, qualitySystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var resp qualityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("analysis: decode quality response: %w", err)
	}

	q := &domain.ArgumentQuality{
		DebateID:                th.ThreadID,
		Structure:               domain.DimensionScore{Score: resp.Structure.Score, Notes: resp.Structure.Notes},
		Evidence:                domain.DimensionScore{Score: resp.Evidence.Score, Notes: resp.Evidence.Notes},
		Counterargument:         domain.DimensionScore{Score: resp.Counterargument.Score, Notes: resp.Counterargument.Notes},
		Persuasiveness:          domain.DimensionScore{Score: resp.Persuasiveness.Score, Notes: resp.Persuasiveness.Notes},
		Civility:                domain.DimensionScore{Score: resp.Civility.Score, Notes: resp.Civility.Notes},
		CitationCount:           resp.Evidence.CitationCount,
		AddressesOpponentPoints: resp.Counterargument.AddressesOpponentPoints,
		SteelmansOpponent:       resp.Counterargument.SteelmansOpponent,
		StrawmansOpponent:       resp.Counterargument.StrawmansOpponent,
		ChangedOpponentMind:     resp.Persuasiveness.ChangedOpponentMind,
		OpponentConcessionQuote: resp.Persuasiveness.OpponentConcessionQuote,
		PersonalAttacks:         resp.Civility.PersonalAttacks,
		Condescension:           resp.Civility.Condescension,
		IsTopArgumentCandidate:  resp.IsTopArgumentCandidate,
		TopArgumentReasons:      resp.TopArgumentReasons,
	}
	for _, c := range resp.Evidence.Citations {
		q.Citations = append(q.Citations, domain.Citation{
			Claim:                  c.Claim,
			Source:                 c.Source,
			SourceType:             c.SourceType,
			ProperlyContextualized: c.ProperlyContextualized,
		})
	}
	for _, f := range resp.Fallacies {
		q.FlaggedFallacies = append(q.FlaggedFallacies, domain.FallacyInstance{
			ID:            uuid.NewString(),
			Type:          domain.ParseFallacyType(f.Type),
			Confidence:    f.Confidence,
			Severity:      domain.ParseFallacySeverity(f.Severity),
			UserStatement: f.UserStatement,
			Explanation:   f.Explanation,
			DebateID:      th.ThreadID,
		})
	}
	q.OverallScore = a.weights.Overall(q)
	return q, nil
}

// AnalyzeDebates scores every identified debate, skipping individual
// failures so one bad thread cannot sink the run. The result is keyed by
// thread id.
func (a *QualityAnalyzer) AnalyzeDebates(ctx context.Context, threads []*domain.DebateThread) (map[string]*domain.ArgumentQuality, error) {
	results := make(map[string]*domain.ArgumentQuality)
	for _, th := range threads {
		if !th.IsDebate {
			continue
		}
		q, err := a.AnalyzeDebate(ctx, th)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			log.Warn().Err(err).Str("thread_id", th.ThreadID).Msg("argument quality analysis failed")
			continue
		}
		results[th.ThreadID] = q
	}
	log.Info().Int("analyzed", len(results)).Msg("argument quality analysis done")
	return results, nil
}
