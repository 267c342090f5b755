package domain

// Outcome is the apparent resolution of a debate as judged by the
// reasoning service.
type Outcome string

// Possible debate outcomes.
const (
	OutcomeUserWon     Outcome = "user_won"
	OutcomeOpponentWon Outcome = "opponent_won"
	OutcomeDraw        Outcome = "draw"
	OutcomeUnresolved  Outcome = "unresolved"
	OutcomeOngoing     Outcome = "ongoing"
)

// ParseOutcome normalizes a raw outcome string, falling back to
// OutcomeUnresolved for unknown values.
func ParseOutcome(s string) Outcome {
	switch Outcome(s) {
	case OutcomeUserWon, OutcomeOpponentWon, OutcomeDraw, OutcomeUnresolved, OutcomeOngoing:
		return Outcome(s)
	default:
		return OutcomeUnresolved
	}
}

// DebateMetadata describes what a debate was about, extracted during
// identification. Present only on threads classified as debates.
type DebateMetadata struct {
	Topic            string  `json:"topic"`
	TopicCategory    string  `json:"topic_category"`
	UserPosition     string  `json:"user_position,omitempty"`
	OpponentPosition string  `json:"opponent_position,omitempty"`
	ExchangeDepth    int     `json:"exchange_depth"`
	IsOngoing        bool    `json:"is_ongoing"`
	ApparentOutcome  Outcome `json:"apparent_outcome"`
}

// DebateThread is one argumentative exchange between the profiled user and
// one or more opponents. It is created by the fetcher, annotated by the
// debate identifier (IsDebate, Confidence, Metadata), and read-only for all
// downstream analyzers.
type DebateThread struct {
	ThreadID    string `json:"thread_id"`
	ThreadTitle string `json:"thread_title"`
	ThreadURL   string `json:"thread_url"`
	Subreddit   string `json:"subreddit"`
	UserIsOP    bool   `json:"user_is_op"`

	UserComments     []Comment `json:"user_comments"`
	OpponentComments []Comment `json:"opponent_comments,omitempty"`

	IsDebate   bool            `json:"is_debate"`
	Confidence float64         `json:"confidence"`
	Metadata   *DebateMetadata `json:"metadata,omitempty"`
}

// UserCommentCount returns how many comments the profiled user left in the
// thread.
func (t *DebateThread) UserCommentCount() int { return len(t.UserComments) }

// TotalUserWords sums the word counts of the user's comments.
func (t *DebateThread) TotalUserWords() int {
	total := 0
	for _, c := range t.UserComments {
		total += c.WordCount()
	}
	return total
}

// MaxDepth returns the deepest nesting level among the user's comments.
// Zero means every comment is top-level (no back-and-forth).
func (t *DebateThread) MaxDepth() int {
	max := 0
	for _, c := range t.UserComments {
		if c.Depth > max {
			max = c.Depth
		}
	}
	return max
}

// TopicCategoryOrDefault returns the classified topic category, or "other"
// when metadata is missing or the category is empty.
func (t *DebateThread) TopicCategoryOrDefault() string {
	if t.Metadata == nil || t.Metadata.TopicCategory == "" {
		return "other"
	}
	return t.Metadata.TopicCategory
}
