package domain

// ExpertiseLevel is the ordinal competence label for one topic.
type ExpertiseLevel string

// Expertise levels, weakest to strongest.
const (
	LevelNovice       ExpertiseLevel = "novice"
	LevelBeginner     ExpertiseLevel = "beginner"
	LevelIntermediate ExpertiseLevel = "intermediate"
	LevelAdvanced     ExpertiseLevel = "advanced"
	LevelExpert       ExpertiseLevel = "expert"
)

// LevelFromScore maps a 0-100 expertise score onto the ordinal level:
// [0,25) novice, [25,50) beginner, [50,75) intermediate, [75,90) advanced,
// [90,100] expert.
func LevelFromScore(score int) ExpertiseLevel {
	switch {
	case score < 25:
		return LevelNovice
	case score < 50:
		return LevelBeginner
	case score < 75:
		return LevelIntermediate
	case score < 90:
		return LevelAdvanced
	default:
		return LevelExpert
	}
}

// TopicExpertise describes demonstrated competence in one subject domain.
type TopicExpertise struct {
	Topic           string         `json:"topic"`
	Level           ExpertiseLevel `json:"level"`
	Score           int            `json:"score"` // 0-100
	DebateCount     int            `json:"debate_count"`
	AvgQuality      float64        `json:"avg_quality"`
	Evidence        []string       `json:"evidence,omitempty"`
	GrowthPotential string         `json:"growth_potential,omitempty"`
}

// KnowledgeProfile is the cross-cutting summary of a user's topical range:
// breadth by topic count (narrow/moderate/broad), depth by level
// distribution (shallow/variable/deep).
type KnowledgeProfile struct {
	Breadth                string   `json:"breadth"`
	Depth                  string   `json:"depth"`
	PrimaryDomains         []string `json:"primary_domains,omitempty"`
	EmergingInterests      []string `json:"emerging_interests,omitempty"`
	CrossDomainConnections []string `json:"cross_domain_connections,omitempty"`
}
