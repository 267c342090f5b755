package domain

import "math"

// Weights are the relative contributions of the five quality dimensions to
// the derived overall score. They must sum to 1.0.
type Weights struct {
	Structure       float64
	Evidence        float64
	Counterargument float64
	Persuasiveness  float64
	Civility        float64
}

// DefaultWeights is the standard dimension weighting. Deployments may
// override it through configuration.
var DefaultWeights = Weights{
	Structure:       0.20,
	Evidence:        0.25,
	Counterargument: 0.20,
	Persuasiveness:  0.20,
	Civility:        0.15,
}

// Sum returns the total of all weights. Valid weight sets sum to 1.0.
func (w Weights) Sum() float64 {
	return w.Structure + w.Evidence + w.Counterargument + w.Persuasiveness + w.Civility
}

// Valid reports whether the weights sum to 1.0 within floating-point
// tolerance.
func (w Weights) Valid() bool {
	return math.Abs(w.Sum()-1.0) < 1e-9
}

// Overall computes the weighted overall score (rounded to the nearest
// integer) for a quality record.
func (w Weights) Overall(q *ArgumentQuality) int {
	score := float64(q.Structure.Score)*w.Structure +
		float64(q.Evidence.Score)*w.Evidence +
		float64(q.Counterargument.Score)*w.Counterargument +
		float64(q.Persuasiveness.Score)*w.Persuasiveness +
		float64(q.Civility.Score)*w.Civility
	return int(math.Round(score))
}

// Citation records one sourced claim found in the user's arguments.
type Citation struct {
	Claim                  string `json:"claim"`
	Source                 string `json:"source"`
	SourceType             string `json:"source_type"`
	ProperlyContextualized bool   `json:"properly_contextualized"`
}

// DimensionScore is one of the five quality sub-scores, with the
// reasoning service's free-text rationale.
type DimensionScore struct {
	Score int    `json:"score"` // 0-100
	Notes string `json:"notes,omitempty"`
}

// ArgumentQuality is the per-debate quality assessment. It is immutable
// once produced and keyed by DebateID. OverallScore is always derived from
// the five dimensions via Weights.Overall, never taken verbatim from the
// reasoning service.
type ArgumentQuality struct {
	DebateID     string `json:"debate_id"`
	OverallScore int    `json:"overall_score"`

	Structure       DimensionScore `json:"structure"`
	Evidence        DimensionScore `json:"evidence"`
	Counterargument DimensionScore `json:"counterargument"`
	Persuasiveness  DimensionScore `json:"persuasiveness"`
	Civility        DimensionScore `json:"civility"`

	CitationCount int        `json:"citation_count"`
	Citations     []Citation `json:"citations,omitempty"`

	AddressesOpponentPoints bool `json:"addresses_opponent_points"`
	SteelmansOpponent       bool `json:"steelmans_opponent"`
	StrawmansOpponent       bool `json:"strawmans_opponent"`

	ChangedOpponentMind     bool   `json:"changed_opponent_mind"`
	OpponentConcessionQuote string `json:"opponent_concession_quote,omitempty"`

	PersonalAttacks bool `json:"personal_attacks"`
	Condescension   bool `json:"condescension"`

	IsTopArgumentCandidate bool     `json:"is_top_argument_candidate"`
	TopArgumentReasons     []string `json:"top_argument_reasons,omitempty"`

	// FlaggedFallacies are fallacies noticed in passing during the quality
	// pass. Advisory only; the dedicated fallacy analysis produces the
	// authoritative profile.
	FlaggedFallacies []FallacyInstance `json:"flagged_fallacies,omitempty"`
}
