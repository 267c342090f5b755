package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/erislabs/go-debate-backend/internal/domain"
	"github.com/erislabs/go-debate-backend/internal/reasoning"
)

const archetypeSystemPrompt = `You are an expert in argumentation theory, personality psychology, and debate coaching.

You classify debaters along two axes:
1. Debate archetypes - characteristic styles of argumentation
2. Cognitive preferences inferred from observable debate behavior

You base every classification on observable evidence and state your confidence honestly.
Always respond with valid JSON matching the requested schema.`

const archetypePromptTemplate = `Analyze this debater's style across their debates to determine their archetype.

## Debater: u/%s

## Debate Summaries

%s

## Quality Metrics Summary
- Average Structure Score: %.0f
- Average Evidence Score: %.0f
- Average Counterargument Score: %.0f
- Average Persuasiveness Score: %.0f
- Average Civility Score: %.0f
- Total Debates Analyzed: %d

## Archetype Classification

Classify the debater into one PRIMARY archetype and up to two SECONDARY tendencies.

### Archetype Definitions

**THE PROFESSOR**: Leads with data, citations, scholarly references. Signals: high evidence scores, academic language.
**THE SOCRATIC**: Uses questions to guide opponents to contradictions. Signals: question-heavy style, high counterargument engagement.
**THE ANALYST**: Breaks arguments into component parts and tests each premise. Signals: high structure scores, numbered points.
**THE ADVOCATE**: Argues with passion and conviction, strong moral framing. Signals: high persuasiveness, clear position-taking.
**THE PHILOSOPHER**: Explores underlying assumptions and first principles. Signals: abstract language, thought experiments.
**THE DIPLOMAT**: Seeks common ground and synthesis. Signals: high civility, steelmanning.
**THE CONTRARIAN**: Takes opposing views to challenge consensus. Signals: counter-positioning, challenging popular views.
**THE EMPIRICIST**: Relies on real-world examples and case studies. Signals: anecdotes, data over theory.

## Required JSON Output

{
    "primary_archetype": {
        "type": "professor",
        "confidence": 0.82,
        "evidence": ["Consistently cites academic sources", "High evidence scores across debates"]
    },
    "secondary_archetypes": [
        {"type": "analyst", "confidence": 0.65, "evidence": ["Frequently breaks down arguments into numbered points"]}
    ],
    "archetype_blend": "Professor-Analyst: Academic rigor with systematic breakdown",
    "style_description": "A methodical debater who leads with evidence and structures arguments clearly.",
    "signature_moves": ["Opens with data or citations", "Uses numbered lists for clarity"],
    "potential_blindspots": ["May come across as condescending", "Sometimes over-relies on authority"]
}

Archetype types must be one of: professor, socratic, analyst, advocate, philosopher, diplomat, contrarian, empiricist, generalist`

const mbtiPromptTemplate = `Analyze this debater's cognitive patterns to infer MBTI-style preferences.

## Debater: u/%s

## Debate Behavior Patterns

%s

## MBTI Inference from Debate Behavior

Analyze each cognitive dimension INDEPENDENTLY based on OBSERVABLE debate behavior:

### E/I - Information Engagement
Extraversion: broad engagement, higher comment volume, builds on others' ideas.
Introversion: deeper engagement with fewer threads, self-contained arguments.

### S/N - Information Processing
Sensing: concrete facts, real-world applications, step-by-step reasoning.
Intuition: patterns and implications, abstract principles, conceptual leaps.

### T/F - Decision Criteria
Thinking: logic-first argumentation, impersonal analysis, comfortable with conflict.
Feeling: values-first argumentation, personal impact consideration.

### J/P - Argument Closure
Judging: drives toward conclusions, structured presentation, decisive stances.
Perceiving: explores multiple angles, comfortable with ambiguity.

## Required JSON Output

{
    "mbti_type": "INTJ",
    "confidence": 0.72,
    "dimension_analysis": {
        "E_I": {"preference": "I", "confidence": 0.78, "evidence": ["Engages deeply with fewer threads"]},
        "S_N": {"preference": "N", "confidence": 0.81, "evidence": ["Frequently discusses theoretical implications"]},
        "T_F": {"preference": "T", "confidence": 0.85, "evidence": ["Leads with logical analysis"]},
        "J_P": {"preference": "J", "confidence": 0.68, "evidence": ["Structures arguments with clear conclusions"]}
    },
    "type_description": "The Architect - Strategic thinkers who see patterns and build systems.",
    "debate_implications": ["Likely to prepare structured arguments in advance"],
    "caveat": "MBTI inference from debate behavior is speculative. Debate style may differ from overall personality."
}`

// ArchetypeAnalyzer classifies debate archetypes and infers cognitive
// preferences from aggregate behavior.
type ArchetypeAnalyzer struct {
	client reasoning.Client
}

// NewArchetypeAnalyzer builds an analyzer.
func NewArchetypeAnalyzer(client reasoning.Client) *ArchetypeAnalyzer {
	return &ArchetypeAnalyzer{client: client}
}

type archetypeResponse struct {
	Primary struct {
		Type       string   `json:"type"`
		Confidence float64  `json:"confidence"`
		Evidence   []string `json:"evidence"`
	} `json:"primary_archetype"`
	Secondary []struct {
		Type       string   `json:"type"`
		Confidence float64  `json:"confidence"`
		Evidence   []string `json:"evidence"`
	} `json:"secondary_archetypes"`
	Blend               string   `json:"archetype_blend"`
	StyleDescription    string   `json:"style_description"`
	SignatureMoves      []string `json:"signature_moves"`
	PotentialBlindspots []string `json:"potential_blindspots"`
}

// ClassifyArchetype determines the user's primary and secondary debate
// archetypes from their debates and quality scores.
func (a *ArchetypeAnalyzer) ClassifyArchetype(ctx context.Context, username string, debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality) (*domain.ArchetypeResult, error) {
	avg := averageQuality(quality)
	prompt := fmt.Sprintf(archetypePromptTemplate,
		username, formatDebateSummaries(debates, quality, 15),
		avg.Structure, avg.Evidence, avg.Counterargument, avg.Persuasiveness, avg.Civility,
		len(debates),
	)

	raw, err := a.client.Analyze(ctx, archetypeSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var resp archetypeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("analysis: decode archetype response: %w", err)
	}

	result := &domain.ArchetypeResult{
		Primary: domain.Archetype{
			Type:       domain.ParseArchetypeType(resp.Primary.Type),
			Confidence: resp.Primary.Confidence,
			Evidence:   resp.Primary.Evidence,
		},
		Blend:               resp.Blend,
		StyleDescription:    resp.StyleDescription,
		SignatureMoves:      resp.SignatureMoves,
		PotentialBlindspots: resp.PotentialBlindspots,
	}
	for i, sec := range resp.Secondary {
		if i >= 2 {
			break
		}
		result.Secondary = append(result.Secondary, domain.Archetype{
			Type:       domain.ParseArchetypeType(sec.Type),
			Confidence: sec.Confidence,
			Evidence:   sec.Evidence,
		})
	}
	return result, nil
}

type mbtiResponse struct {
	Type       string  `json:"mbti_type"`
	Confidence float64 `json:"confidence"`
	Dimensions struct {
		EI mbtiDimension `json:"E_I"`
		SN mbtiDimension `json:"S_N"`
		TF mbtiDimension `json:"T_F"`
		JP mbtiDimension `json:"J_P"`
	} `json:"dimension_analysis"`
	TypeDescription    string   `json:"type_description"`
	DebateImplications []string `json:"debate_implications"`
	Caveat             string   `json:"caveat"`
}

type mbtiDimension struct {
	Preference string   `json:"preference"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// InferMBTI estimates cognitive preferences from debate behavior. Every
// result carries a caveat; the inference is advisory only.
func (a *ArchetypeAnalyzer) InferMBTI(ctx context.Context, username string, debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality) (*domain.MBTIAssessment, error) {
	prompt := fmt.Sprintf(mbtiPromptTemplate, username, formatBehaviorPatterns(debates, quality))

	raw, err := a.client.Analyze(ctx, archetypeSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var resp mbtiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("analysis: decode mbti response: %w", err)
	}

	out := &domain.MBTIAssessment{
		Type:               resp.Type,
		Confidence:         resp.Confidence,
		EI:                 domain.MBTIDimension(resp.Dimensions.EI),
		SN:                 domain.MBTIDimension(resp.Dimensions.SN),
		TF:                 domain.MBTIDimension(resp.Dimensions.TF),
		JP:                 domain.MBTIDimension(resp.Dimensions.JP),
		TypeDescription:    resp.TypeDescription,
		DebateImplications: resp.DebateImplications,
		Caveat:             resp.Caveat,
	}
	if out.Type == "" {
		out.Type = "XXXX"
	}
	if out.Caveat == "" {
		out.Caveat = "MBTI inference from debate behavior is speculative."
	}
	return out, nil
}

// averageQuality computes the mean of each dimension over all quality
// records. Empty input yields all zeros.
func averageQuality(quality map[string]*domain.ArgumentQuality) domain.QualityAverages {
	var avg domain.QualityAverages
	if len(quality) == 0 {
		return avg
	}
	for _, q := range quality {
		avg.Structure += float64(q.Structure.Score)
		avg.Evidence += float64(q.Evidence.Score)
		avg.Counterargument += float64(q.Counterargument.Score)
		avg.Persuasiveness += float64(q.Persuasiveness.Score)
		avg.Civility += float64(q.Civility.Score)
	}
	n := float64(len(quality))
	avg.Structure /= n
	avg.Evidence /= n
	avg.Counterargument /= n
	avg.Persuasiveness /= n
	avg.Civility /= n
	return avg
}

func formatDebateSummaries(debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality, maxDebates int) string {
	var b strings.Builder
	for i, d := range debates {
		if i >= maxDebates {
			break
		}
		topic, userPos, _ := threadContext(d)
		fmt.Fprintf(&b, "\n### Debate in r/%s\n", d.Subreddit)
		fmt.Fprintf(&b, "Topic: %s\n", topic)
		fmt.Fprintf(&b, "Position: %s\n", userPos)
		if q := quality[d.ThreadID]; q != nil {
			fmt.Fprintf(&b, "Quality Scores:\n  - Structure: %d\n  - Evidence: %d\n  - Counterargument: %d\n  - Persuasiveness: %d\n  - Civility: %d\n",
				q.Structure.Score, q.Evidence.Score, q.Counterargument.Score, q.Persuasiveness.Score, q.Civility.Score)
			if q.IsTopArgumentCandidate {
				b.WriteString("  Top argument candidate\n")
			}
		}
		if len(d.UserComments) > 0 {
			fmt.Fprintf(&b, "Sample argument: %q\n", truncate(d.UserComments[0].Body, 300))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatBehaviorPatterns(debates []*domain.DebateThread, quality map[string]*domain.ArgumentQuality) string {
	var b strings.Builder

	totalComments := 0
	subs := make(map[string]bool)
	for _, d := range debates {
		totalComments += d.UserCommentCount()
		subs[d.Subreddit] = true
	}
	avgPerThread := 0.0
	if len(debates) > 0 {
		avgPerThread = float64(totalComments) / float64(len(debates))
	}

	b.WriteString("## Engagement Patterns\n")
	fmt.Fprintf(&b, "- Total debates: %d\n", len(debates))
	fmt.Fprintf(&b, "- Average comments per debate: %.1f\n", avgPerThread)
	fmt.Fprintf(&b, "- Topics engaged: %d subreddits\n", len(subs))

	if len(quality) > 0 {
		avg := averageQuality(quality)
		highEvidence, highCivility := 0, 0
		for _, q := range quality {
			if q.Evidence.Score >= 70 {
				highEvidence++
			}
			if q.Civility.Score >= 80 {
				highCivility++
			}
		}
		b.WriteString("\n## Argumentation Patterns\n")
		fmt.Fprintf(&b, "- Average evidence usage: %.0f\n", avg.Evidence)
		fmt.Fprintf(&b, "- Average structure: %.0f\n", avg.Structure)
		fmt.Fprintf(&b, "- Average persuasiveness: %.0f\n", avg.Persuasiveness)
		fmt.Fprintf(&b, "- High-evidence debates: %d/%d\n", highEvidence, len(quality))
		fmt.Fprintf(&b, "- High-civility debates: %d/%d\n", highCivility, len(quality))
	}

	b.WriteString("\n## Sample Statements\n")
	for i, d := range debates {
		if i >= 5 {
			break
		}
		if len(d.UserComments) > 0 {
			fmt.Fprintf(&b, "- %q\n", truncate(d.UserComments[0].Body, 200))
		}
	}
	return b.String()
}
