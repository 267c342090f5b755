package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/domain"
	"github.com/erislabs/go-debate-backend/internal/reasoning"
)

const topArgumentsSystemPrompt = `You are an expert debate coach and rhetoric analyst.

You identify exceptional arguments that demonstrate:
- Strong logical structure
- Effective use of evidence
- Persuasive technique
- Clear communication
- Intellectual honesty

You can identify signature techniques and categorize arguments by their strengths.

Always respond with valid JSON matching the requested schema.`

const topArgumentsPromptTemplate = `Identify the TOP ARGUMENTS from this user's debate history.

## User: u/%s

## Debates with Quality Scores

%s

## Selection Criteria

Identify arguments that excel in one or more categories:

### Categories

**MOST_PERSUASIVE**
- Changed opponent's mind or got concessions
- Effective rhetorical structure
- Clear, compelling presentation

**BEST_EVIDENCED**
- Strong citations and sources
- Well-contextualized data
- Proper use of expert opinion

**BEST_STRUCTURED**
- Clear logical flow
- Well-organized premises
- Explicit reasoning chains

**MOST_CIVIL**
- Maintained respect under pressure
- Steelmanned opponent's position
- Productive dialogue despite disagreement

**MOST_ORIGINAL**
- Novel perspective or framing
- Creative analogies
- Unique insight

**MOST_CONCISE**
- Maximum impact with minimum words
- Elegant simplification
- Clear distillation of complex ideas

## Required JSON Output

{
    "top_arguments": [
        {
            "rank": 1,
            "debate_id": "thread123",
            "category": "most_persuasive",
            "title": "The Economic Case for Remote Work",
            "snippet": "The productivity data from Stanford's 2-year study shows a 13%% performance increase for remote workers...",
            "full_context": {
                "subreddit": "economics",
                "thread_title": "Remote work is less productive than office work",
                "opponent_position": "Remote work hurts collaboration and productivity",
                "outcome": "Opponent conceded the productivity point"
            },
            "quality_breakdown": {
                "structure": 85,
                "evidence": 92,
                "persuasiveness": 88,
                "civility": 90
            },
            "why_exceptional": "Combined hard data with clear cost-benefit analysis, directly addressing the opponent's core claim",
            "techniques_used": ["data-first opening", "quantified claims", "direct rebuttal"]
        }
    ],
    "signature_techniques": [
        {
            "technique": "Data-First Opening",
            "description": "Opens arguments with specific statistics or studies before making claims",
            "frequency": "high",
            "effectiveness": "Very effective for establishing credibility"
        }
    ]
}

Category must be one of: most_persuasive, best_evidenced, best_structured, most_civil, most_original, most_concise.
Select up to %d top arguments, prioritizing diversity across categories.
For each argument, extract the BEST snippet (50-200 words) that showcases why it's exceptional.`

// TopArgumentsAnalyzer extracts and ranks the user's strongest arguments.
type TopArgumentsAnalyzer struct {
	client reasoning.Client
	maxIn  int
	maxOut int
}

// NewTopArgumentsAnalyzer builds an analyzer with the configured input and
// output caps.
func NewTopArgumentsAnalyzer(client reasoning.Client, cfg config.AnalysisConfig) *TopArgumentsAnalyzer {
	return &TopArgumentsAnalyzer{
		client: client,
		maxIn:  cfg.TopArgumentsMaxIn,
		maxOut: cfg.TopArgumentsMaxOut,
	}
}

// TopArgumentsResult bundles the ranked arguments with the recurring
// techniques observed across them.
type TopArgumentsResult struct {
	Arguments  []domain.TopArgument
	Techniques []domain.SignatureTechnique
}

type topArgumentsResponse struct {
	TopArguments []struct {
		Rank     int    `json:"rank"`
		DebateID string `json:"debate_id"`
		Category string `json:"category"`
		Title    string `json:"title"`
		Snippet  string `json:"snippet"`
		Context  struct {
			Subreddit        string `json:"subreddit"`
			ThreadTitle      string `json:"thread_title"`
			OpponentPosition string `json:"opponent_position"`
			Outcome          string `json:"outcome"`
		} `json:"full_context"`
		Quality        domain.QualityBreakdown `json:"quality_breakdown"`
		WhyExceptional string                  `json:"why_exceptional"`
		TechniquesUsed []string                `json:"techniques_used"`
	} `json:"top_arguments"`
	SignatureTechniques []domain.SignatureTechnique `json:"signature_techniques"`
}

// ExtractTopArguments asks the reasoning service to pick the user's best
// arguments from their highest-quality debates. Ranks are reassigned
// locally in return order.
func (a *TopArgumentsAnalyzer) ExtractTopArguments(ctx context.Context, username string, debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality) (*TopArgumentsResult, error) {
	prompt := fmt.Sprintf(topArgumentsPromptTemplate,
		username, formatDebateDetails(debates, quality, a.maxIn), a.maxOut)

	raw, err := a.client.Analyze(ctx, topArgumentsSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var resp topArgumentsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("analysis: decode top arguments response: %w", err)
	}

	result := &TopArgumentsResult{Techniques: resp.SignatureTechniques}
	for _, arg := range resp.TopArguments {
		if len(result.Arguments) >= a.maxOut {
			break
		}
		result.Arguments = append(result.Arguments, domain.TopArgument{
			Rank:             len(result.Arguments) + 1,
			DebateID:         arg.DebateID,
			Category:         domain.ParseArgumentCategory(arg.Category),
			Title:            arg.Title,
			Snippet:          arg.Snippet,
			Subreddit:        arg.Context.Subreddit,
			ThreadTitle:      arg.Context.ThreadTitle,
			OpponentPosition: arg.Context.OpponentPosition,
			Outcome:          arg.Context.Outcome,
			Quality:          arg.Quality,
			WhyExceptional:   arg.WhyExceptional,
			TechniquesUsed:   arg.TechniquesUsed,
		})
	}

	log.Info().
		Str("username", username).
		Int("top_arguments", len(result.Arguments)).
		Int("signature_techniques", len(result.Techniques)).
		Msg("top arguments extracted")
	return result, nil
}

// formatDebateDetails renders the highest-quality debates as prompt input,
// strongest first.
func formatDebateDetails(debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality, maxDebates int) string {
	sorted := make([]*domain.DebateThread, len(debates))
	copy(sorted, debates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return overallScore(quality, sorted[i].ThreadID) > overallScore(quality, sorted[j].ThreadID)
	})
	if len(sorted) > maxDebates {
		sorted = sorted[:maxDebates]
	}

	var b strings.Builder
	for _, d := range sorted {
		fmt.Fprintf(&b, "\n### Thread: %s\n", d.ThreadID)
		fmt.Fprintf(&b, "Subreddit: r/%s\n", d.Subreddit)
		fmt.Fprintf(&b, "Title: %s\n", truncate(d.ThreadTitle, 100))

		if d.Metadata != nil {
			fmt.Fprintf(&b, "Topic: %s\n", d.Metadata.Topic)
			fmt.Fprintf(&b, "User Position: %s\n", d.Metadata.UserPosition)
			fmt.Fprintf(&b, "Opponent Position: %s\n", d.Metadata.OpponentPosition)
			fmt.Fprintf(&b, "Outcome: %s\n", d.Metadata.ApparentOutcome)
		}

		if q := quality[d.ThreadID]; q != nil {
			b.WriteString("Quality Scores:\n")
			fmt.Fprintf(&b, "  Overall: %d\n", q.OverallScore)
			fmt.Fprintf(&b, "  Structure: %d\n", q.Structure.Score)
			fmt.Fprintf(&b, "  Evidence: %d\n", q.Evidence.Score)
			fmt.Fprintf(&b, "  Counterargument: %d\n", q.Counterargument.Score)
			fmt.Fprintf(&b, "  Persuasiveness: %d\n", q.Persuasiveness.Score)
			fmt.Fprintf(&b, "  Civility: %d\n", q.Civility.Score)
			if q.ChangedOpponentMind {
				b.WriteString("  Changed opponent's mind\n")
			}
			if q.OpponentConcessionQuote != "" {
				fmt.Fprintf(&b, "  Concession: %q\n", truncate(q.OpponentConcessionQuote, 100))
			}
			if q.IsTopArgumentCandidate {
				b.WriteString("  Marked as top argument candidate\n")
			}
		}

		b.WriteString("\nUser Comments:\n")
		for i, c := range d.UserComments {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "[%s] %s\n\n", c.ID, truncate(c.Body, 500))
		}
	}
	return b.String()
}

func overallScore(quality map[string]*domain.ArgumentQuality, threadID string) int {
	if q := quality[threadID]; q != nil {
		return q.OverallScore
	}
	return 0
}
