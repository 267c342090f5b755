package domain

import "time"

// QualityAverages holds the per-dimension averages over all debates with a
// valid quality record.
type QualityAverages struct {
	Structure       float64 `json:"structure"`
	Evidence        float64 `json:"evidence"`
	Counterargument float64 `json:"counterargument"`
	Persuasiveness  float64 `json:"persuasiveness"`
	Civility        float64 `json:"civility"`
}

// DebateSummary is the compact per-debate view embedded in a profile.
type DebateSummary struct {
	ThreadID         string  `json:"thread_id"`
	ThreadTitle      string  `json:"thread_title"`
	Subreddit        string  `json:"subreddit"`
	UserCommentCount int     `json:"user_comment_count"`
	UserIsOP         bool    `json:"user_is_op"`
	Topic            string  `json:"topic,omitempty"`
	TopicCategory    string  `json:"topic_category,omitempty"`
	UserPosition     string  `json:"user_position,omitempty"`
	OpponentPosition string  `json:"opponent_position,omitempty"`
	Outcome          Outcome `json:"outcome,omitempty"`

	Quality       *ArgumentQuality `json:"quality,omitempty"`
	IsTopArgument bool             `json:"is_top_argument"`
	ChangedMind   bool             `json:"changed_mind"`
}

// SynthesizedProfile is the root aggregate combining every analyzer's
// output for one user. It is the unit of caching. OverallScore is computed
// only from debates holding a valid ArgumentQuality record; debates without
// one are excluded, never defaulted to zero.
type SynthesizedProfile struct {
	Username   string    `json:"username"`
	AnalyzedAt time.Time `json:"analyzed_at"`

	OverallScore    int `json:"overall_score"`
	DebatesAnalyzed int `json:"debates_analyzed"`
	TotalComments   int `json:"total_comments"`
	TotalThreads    int `json:"total_threads"`

	QualityBreakdown QualityAverages `json:"quality_breakdown"`

	Archetype *ArchetypeResult     `json:"archetype,omitempty"`
	MBTI      *MBTIAssessment      `json:"mbti,omitempty"`
	GoodFaith *GoodFaithAssessment `json:"good_faith,omitempty"`
	Fallacies *FallacyProfile      `json:"fallacy_profile,omitempty"`

	TopArguments        []TopArgument        `json:"top_arguments,omitempty"`
	SignatureTechniques []SignatureTechnique `json:"signature_techniques,omitempty"`

	TopicExpertise   []TopicExpertise  `json:"topic_expertise,omitempty"`
	KnowledgeProfile *KnowledgeProfile `json:"knowledge_profile,omitempty"`

	Debates []DebateSummary `json:"debates,omitempty"`
}
