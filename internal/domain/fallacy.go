package domain

// FallacyType is the closed enumeration of logical fallacies the analyzer
// recognizes, grouped into four families: relevance, presumption,
// ambiguity, and bad-faith tactics.
type FallacyType string

// Relevance fallacies: the argument does not support the conclusion.
const (
	FallacyAdHominem         FallacyType = "ad_hominem"
	FallacyStrawman          FallacyType = "strawman"
	FallacyRedHerring        FallacyType = "red_herring"
	FallacyAppealToAuthority FallacyType = "appeal_to_authority"
	FallacyAppealToEmotion   FallacyType = "appeal_to_emotion"
	FallacyAppealToNature    FallacyType = "appeal_to_nature"
	FallacyWhataboutism      FallacyType = "whataboutism"
	FallacyGeneticFallacy    FallacyType = "genetic_fallacy"
)

// Presumption fallacies: the argument assumes what it needs to prove.
const (
	FallacyBeggingTheQuestion   FallacyType = "begging_the_question"
	FallacyFalseDichotomy       FallacyType = "false_dichotomy"
	FallacyNoTrueScotsman       FallacyType = "no_true_scotsman"
	FallacyHastyGeneralization  FallacyType = "hasty_generalization"
	FallacySlipperySlope        FallacyType = "slippery_slope"
	FallacyFalseCause           FallacyType = "false_cause"
	FallacyCircularReasoning    FallacyType = "circular_reasoning"
	FallacyCherryPicking        FallacyType = "cherry_picking"
)

// Ambiguity fallacies: the argument exploits unclear language.
const (
	FallacyEquivocation FallacyType = "equivocation"
)

// Bad-faith tactics: deliberate rhetorical manipulation.
const (
	FallacyMovingGoalposts FallacyType = "moving_goalposts"
	FallacySealioning      FallacyType = "sealioning"
	FallacyGishGallop      FallacyType = "gish_gallop"
	FallacyBurdenShifting  FallacyType = "burden_shifting"
	FallacyOther           FallacyType = "other"
)

var knownFallacyTypes = map[FallacyType]struct{}{
	FallacyAdHominem: {}, FallacyStrawman: {}, FallacyRedHerring: {},
	FallacyAppealToAuthority: {}, FallacyAppealToEmotion: {}, FallacyAppealToNature: {},
	FallacyWhataboutism: {}, FallacyGeneticFallacy: {},
	FallacyBeggingTheQuestion: {}, FallacyFalseDichotomy: {}, FallacyNoTrueScotsman: {},
	FallacyHastyGeneralization: {}, FallacySlipperySlope: {}, FallacyFalseCause: {},
	FallacyCircularReasoning: {}, FallacyCherryPicking: {}, FallacyEquivocation: {},
	FallacyMovingGoalposts: {}, FallacySealioning: {}, FallacyGishGallop: {},
	FallacyBurdenShifting: {},
}

// ParseFallacyType normalizes a raw type string, mapping unknown values to
// FallacyOther rather than rejecting them.
func ParseFallacyType(s string) FallacyType {
	if _, ok := knownFallacyTypes[FallacyType(s)]; ok {
		return FallacyType(s)
	}
	return FallacyOther
}

// FallacySeverity grades how much a fallacy weakens the argument.
type FallacySeverity string

// Severity levels, weakest to strongest.
const (
	SeverityMinor       FallacySeverity = "minor"
	SeverityModerate    FallacySeverity = "moderate"
	SeveritySignificant FallacySeverity = "significant"
	SeveritySevere      FallacySeverity = "severe"
)

// Weight maps the severity to the 1..4 numeric scale used when averaging
// severity per fallacy type.
func (s FallacySeverity) Weight() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySignificant:
		return 3
	case SeveritySevere:
		return 4
	default:
		return 1
	}
}

// ParseFallacySeverity normalizes a raw severity string, defaulting to
// SeverityMinor.
func ParseFallacySeverity(s string) FallacySeverity {
	switch FallacySeverity(s) {
	case SeverityMinor, SeverityModerate, SeveritySignificant, SeveritySevere:
		return FallacySeverity(s)
	default:
		return SeverityMinor
	}
}

// DensityLevel is the ordinal label summarizing how fallacy-prone a set of
// debates is.
type DensityLevel string

// Density levels, least to most fallacy-prone.
const (
	DensityNone     DensityLevel = "none"
	DensityLow      DensityLevel = "low"
	DensityModerate DensityLevel = "moderate"
	DensityHigh     DensityLevel = "high"
	DensityVeryHigh DensityLevel = "very_high"
)

// Rank returns the 0..4 ordinal of the density label (none=0 ... very_high=4).
func (d DensityLevel) Rank() int {
	switch d {
	case DensityNone:
		return 0
	case DensityLow:
		return 1
	case DensityModerate:
		return 2
	case DensityHigh:
		return 3
	case DensityVeryHigh:
		return 4
	default:
		return 1 // unknown labels count as "low"
	}
}

// BucketDensity converts a numeric density average back to a label.
// Thresholds are inclusive on the lower bound, exclusive on the upper:
// [0,0.5) none, [0.5,1.5) low, [1.5,2.5) moderate, [2.5,3.5) high,
// [3.5,...) very_high.
func BucketDensity(avg float64) DensityLevel {
	switch {
	case avg < 0.5:
		return DensityNone
	case avg < 1.5:
		return DensityLow
	case avg < 2.5:
		return DensityModerate
	case avg < 3.5:
		return DensityHigh
	default:
		return DensityVeryHigh
	}
}

// FallacyInstance is one detected fallacy occurrence, tied back to the
// debate and comment it was found in.
type FallacyInstance struct {
	ID         string          `json:"id"`
	Type       FallacyType     `json:"type"`
	Confidence float64         `json:"confidence"` // 0.0-1.0
	Severity   FallacySeverity `json:"severity"`

	UserStatement   string `json:"user_statement"`
	OpponentContext string `json:"opponent_context,omitempty"`
	Explanation     string `json:"explanation"`

	DebateID  string `json:"debate_id"`
	CommentID string `json:"comment_id,omitempty"`
}

// RankedFallacy is one entry of the per-type ranking inside a
// FallacyProfile: occurrence count, share, mean severity, and up to five
// example instances.
type RankedFallacy struct {
	Type        FallacyType       `json:"fallacy_type"`
	Count       int               `json:"count"`
	Percentage  float64           `json:"percentage"`
	AvgSeverity float64           `json:"avg_severity"`
	Instances   []FallacyInstance `json:"instances"`
}

// FallacyProfile aggregates fallacy instances across all of a user's
// debates. A profile with zero fallacies is a valid, expected outcome.
type FallacyProfile struct {
	TotalFallacies    int                     `json:"total_fallacies"`
	FallacyCounts     map[FallacyType]int     `json:"fallacy_counts"`
	FallacyBySeverity map[FallacySeverity]int `json:"fallacy_by_severity"`
	RankedFallacies   []RankedFallacy         `json:"ranked_fallacies"`
	AvgDensity        DensityLevel            `json:"avg_density"`
	Notes             string                  `json:"notes"`
}
