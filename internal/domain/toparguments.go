package domain

// ArgumentCategory tags what a top argument is best at.
type ArgumentCategory string

// Top-argument categories.
const (
	CategoryMostPersuasive ArgumentCategory = "most_persuasive"
	CategoryBestEvidenced  ArgumentCategory = "best_evidenced"
	CategoryBestStructured ArgumentCategory = "best_structured"
	CategoryMostCivil      ArgumentCategory = "most_civil"
	CategoryMostOriginal   ArgumentCategory = "most_original"
	CategoryMostConcise    ArgumentCategory = "most_concise"
)

var knownCategories = map[ArgumentCategory]struct{}{
	CategoryMostPersuasive: {}, CategoryBestEvidenced: {}, CategoryBestStructured: {},
	CategoryMostCivil: {}, CategoryMostOriginal: {}, CategoryMostConcise: {},
}

// ParseArgumentCategory normalizes a raw category string, defaulting to
// CategoryMostPersuasive.
func ParseArgumentCategory(s string) ArgumentCategory {
	if _, ok := knownCategories[ArgumentCategory(s)]; ok {
		return ArgumentCategory(s)
	}
	return CategoryMostPersuasive
}

// QualityBreakdown is the per-dimension score snapshot attached to a top
// argument.
type QualityBreakdown struct {
	Structure      int `json:"structure"`
	Evidence       int `json:"evidence"`
	Persuasiveness int `json:"persuasiveness"`
	Civility       int `json:"civility"`
}

// TopArgument is one of the user's best arguments. Rank is assigned by the
// analyzer (1..N in return order) after re-validation; it is never trusted
// verbatim from the reasoning service.
type TopArgument struct {
	Rank     int              `json:"rank"`
	DebateID string           `json:"debate_id"`
	Category ArgumentCategory `json:"category"`

	Title   string `json:"title"`
	Snippet string `json:"snippet"`

	Subreddit        string `json:"subreddit,omitempty"`
	ThreadTitle      string `json:"thread_title,omitempty"`
	OpponentPosition string `json:"opponent_position,omitempty"`
	Outcome          string `json:"outcome,omitempty"`

	Quality        QualityBreakdown `json:"quality_breakdown"`
	WhyExceptional string           `json:"why_exceptional,omitempty"`
	TechniquesUsed []string         `json:"techniques_used,omitempty"`
}

// SignatureTechnique is a recurring rhetorical technique observed across
// the user's best arguments.
type SignatureTechnique struct {
	Technique     string `json:"technique"`
	Description   string `json:"description"`
	Frequency     string `json:"frequency"` // low | moderate | high
	Effectiveness string `json:"effectiveness,omitempty"`
}
