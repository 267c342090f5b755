package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/erislabs/go-debate-backend/internal/domain"
	"github.com/erislabs/go-debate-backend/internal/reasoning"
)

const expertiseSystemPrompt = `You are an expert at assessing domain knowledge and expertise from argumentation.

You analyze debate patterns to identify:
- Areas of genuine expertise vs superficial familiarity
- Depth of knowledge demonstrated through argumentation
- Consistency of quality across topics
- Credibility signals in specific domains

You distinguish between:
- Deep expertise (technical knowledge, nuanced understanding)
- Working knowledge (can discuss competently)
- Casual familiarity (basic awareness only)

Always respond with valid JSON matching the requested schema.`

const expertisePromptTemplate = `Analyze this user's topic expertise based on their debate history.

## User: u/%s

## Debates by Topic Category

%s

## Quality Summary by Topic

%s

## Expertise Assessment Required

Evaluate the user's expertise across topics based on:

1. **Debate Quality**: Higher scores in a topic suggest more competence
2. **Evidence Usage**: Citation quality and appropriateness
3. **Nuance**: Ability to handle complexity and edge cases
4. **Consistency**: Performance across multiple debates in same topic
5. **Terminology**: Appropriate use of domain-specific language

### Expertise Levels

- **Expert** (90-100): Deep technical knowledge, can discuss nuances, cites appropriately
- **Advanced** (75-89): Strong working knowledge, handles most complexity
- **Intermediate** (50-74): Solid basics, occasional gaps in advanced topics
- **Beginner** (25-49): Basic familiarity, struggles with complexity
- **Novice** (0-24): Minimal knowledge, frequent errors

## Required JSON Output

{
    "expertise_map": [
        {
            "topic": "Economics",
            "level": "advanced",
            "score": 82,
            "debate_count": 8,
            "avg_quality": 78,
            "evidence": [
                "Correctly applies marginal utility concepts",
                "Cites academic economic research appropriately"
            ],
            "growth_potential": "Could strengthen empirical methodology"
        }
    ],
    "knowledge_profile": {
        "breadth": "moderate",
        "depth": "variable",
        "primary_domains": ["Technology", "Economics"],
        "emerging_interests": ["Philosophy"],
        "cross_domain_connections": [
            "Applies economic reasoning to technology policy debates"
        ]
    }
}

Breadth levels: narrow (1-2 topics), moderate (3-5 topics), broad (6+ topics)
Depth levels: shallow (mostly beginner/novice), variable (mixed), deep (mostly advanced/expert)`

// ExpertiseAnalyzer assesses demonstrated domain knowledge per topic
// category.
type ExpertiseAnalyzer struct {
	client reasoning.Client
}

// NewExpertiseAnalyzer builds an analyzer.
func NewExpertiseAnalyzer(client reasoning.Client) *ExpertiseAnalyzer {
	return &ExpertiseAnalyzer{client: client}
}

// ExpertiseResult pairs per-topic assessments with the cross-cutting
// knowledge profile.
type ExpertiseResult struct {
	Topics  []domain.TopicExpertise
	Profile domain.KnowledgeProfile
}

type expertiseResponse struct {
	ExpertiseMap []struct {
		Topic           string   `json:"topic"`
		Level           string   `json:"level"`
		Score           int      `json:"score"`
		DebateCount     int      `json:"debate_count"`
		AvgQuality      float64  `json:"avg_quality"`
		Evidence        []string `json:"evidence"`
		GrowthPotential string   `json:"growth_potential"`
	} `json:"expertise_map"`
	KnowledgeProfile struct {
		Breadth                string   `json:"breadth"`
		Depth                  string   `json:"depth"`
		PrimaryDomains         []string `json:"primary_domains"`
		EmergingInterests      []string `json:"emerging_interests"`
		CrossDomainConnections []string `json:"cross_domain_connections"`
	} `json:"knowledge_profile"`
}

// AnalyzeExpertise groups debates by topic category and asks the reasoning
// service for a per-topic assessment. The level is re-derived from the
// score when the returned label is unknown.
func (a *ExpertiseAnalyzer) AnalyzeExpertise(ctx context.Context, username string, debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality) (*ExpertiseResult, error) {
	byTopic := groupByTopic(debates)
	prompt := fmt.Sprintf(expertisePromptTemplate,
		username,
		formatDebatesByTopic(byTopic, quality),
		formatQualityByTopic(byTopic, quality),
	)

	raw, err := a.client.Analyze(ctx, expertiseSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var resp expertiseResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("analysis: decode expertise response: %w", err)
	}

	result := &ExpertiseResult{
		Profile: domain.KnowledgeProfile{
			Breadth:                defaultStr(resp.KnowledgeProfile.Breadth, "moderate"),
			Depth:                  defaultStr(resp.KnowledgeProfile.Depth, "variable"),
			PrimaryDomains:         resp.KnowledgeProfile.PrimaryDomains,
			EmergingInterests:      resp.KnowledgeProfile.EmergingInterests,
			CrossDomainConnections: resp.KnowledgeProfile.CrossDomainConnections,
		},
	}
	for _, e := range resp.ExpertiseMap {
		score := e.Score
		if score == 0 && e.Level == "" {
			score = 50
		}
		result.Topics = append(result.Topics, domain.TopicExpertise{
			Topic:           defaultStr(e.Topic, "Unknown"),
			Level:           parseExpertiseLevel(e.Level, score),
			Score:           score,
			DebateCount:     e.DebateCount,
			AvgQuality:      e.AvgQuality,
			Evidence:        e.Evidence,
			GrowthPotential: e.GrowthPotential,
		})
	}

	log.Info().
		Str("username", username).
		Int("topics", len(result.Topics)).
		Msg("topic expertise analyzed")
	return result, nil
}

// parseExpertiseLevel accepts a known level label, otherwise derives the
// level from the numeric score.
func parseExpertiseLevel(s string, score int) domain.ExpertiseLevel {
	switch domain.ExpertiseLevel(s) {
	case domain.LevelNovice, domain.LevelBeginner, domain.LevelIntermediate,
		domain.LevelAdvanced, domain.LevelExpert:
		return domain.ExpertiseLevel(s)
	default:
		return domain.LevelFromScore(score)
	}
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// groupByTopic buckets debates by their classified topic category,
// defaulting to "other" for unclassified threads.
func groupByTopic(debates []*domain.DebateThread) map[string][]*domain.DebateThread {
	byTopic := make(map[string][]*domain.DebateThread)
	for _, d := range debates {
		cat := d.TopicCategoryOrDefault()
		byTopic[cat] = append(byTopic[cat], d)
	}
	return byTopic
}

var titleCaser = cases.Title(language.English)

// formatDebatesByTopic renders up to five sample debates per topic,
// busiest topics first.
func formatDebatesByTopic(byTopic map[string][]*domain.DebateThread, quality map[string]*domain.ArgumentQuality) string {
	topics := sortedTopics(byTopic)
	sort.SliceStable(topics, func(i, j int) bool {
		return len(byTopic[topics[i]]) > len(byTopic[topics[j]])
	})

	var b strings.Builder
	for _, topic := range topics {
		debates := byTopic[topic]
		fmt.Fprintf(&b, "\n## %s (%d debates)\n", titleCaser.String(topic), len(debates))

		for i, d := range debates {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "\n### %s\n", truncate(d.ThreadTitle, 80))
			fmt.Fprintf(&b, "Subreddit: r/%s\n", d.Subreddit)
			if d.Metadata != nil {
				fmt.Fprintf(&b, "Topic: %s\n", d.Metadata.Topic)
				fmt.Fprintf(&b, "Position: %s\n", d.Metadata.UserPosition)
			}
			if q := quality[d.ThreadID]; q != nil {
				fmt.Fprintf(&b, "Quality: %d\n", q.OverallScore)
				fmt.Fprintf(&b, "Evidence Score: %d\n", q.Evidence.Score)
			}
			if len(d.UserComments) > 0 {
				fmt.Fprintf(&b, "Sample: %q\n", truncate(d.UserComments[0].Body, 300))
			}
		}
	}
	return b.String()
}

// formatQualityByTopic renders per-topic score averages, alphabetically.
func formatQualityByTopic(byTopic map[string][]*domain.DebateThread, quality map[string]*domain.ArgumentQuality) string {
	var b strings.Builder
	for _, topic := range sortedTopics(byTopic) {
		var overall, evidence, structure, n int
		for _, d := range byTopic[topic] {
			q := quality[d.ThreadID]
			if q == nil {
				continue
			}
			overall += q.OverallScore
			evidence += q.Evidence.Score
			structure += q.Structure.Score
			n++
		}
		if n == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", titleCaser.String(topic))
		fmt.Fprintf(&b, "  Debates: %d\n", n)
		fmt.Fprintf(&b, "  Avg Overall: %.0f\n", float64(overall)/float64(n))
		fmt.Fprintf(&b, "  Avg Evidence: %.0f\n", float64(evidence)/float64(n))
		fmt.Fprintf(&b, "  Avg Structure: %.0f\n", float64(structure)/float64(n))
	}
	return b.String()
}

func sortedTopics(byTopic map[string][]*domain.DebateThread) []string {
	topics := make([]string, 0, len(byTopic))
	for t := range byTopic {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}
