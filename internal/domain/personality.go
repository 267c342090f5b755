package domain

// ArchetypeType is the fixed enumeration of characteristic debating
// styles.
type ArchetypeType string

// Archetype classifications.
const (
	ArchetypeProfessor   ArchetypeType = "professor"
	ArchetypeSocratic    ArchetypeType = "socratic"
	ArchetypeAnalyst     ArchetypeType = "analyst"
	ArchetypeAdvocate    ArchetypeType = "advocate"
	ArchetypePhilosopher ArchetypeType = "philosopher"
	ArchetypeDiplomat    ArchetypeType = "diplomat"
	ArchetypeContrarian  ArchetypeType = "contrarian"
	ArchetypeEmpiricist  ArchetypeType = "empiricist"
	ArchetypeGeneralist  ArchetypeType = "generalist"
)

var knownArchetypes = map[ArchetypeType]struct{}{
	ArchetypeProfessor: {}, ArchetypeSocratic: {}, ArchetypeAnalyst: {},
	ArchetypeAdvocate: {}, ArchetypePhilosopher: {}, ArchetypeDiplomat: {},
	ArchetypeContrarian: {}, ArchetypeEmpiricist: {}, ArchetypeGeneralist: {},
}

// ParseArchetypeType normalizes a raw archetype string, defaulting to
// ArchetypeGeneralist.
func ParseArchetypeType(s string) ArchetypeType {
	if _, ok := knownArchetypes[ArchetypeType(s)]; ok {
		return ArchetypeType(s)
	}
	return ArchetypeGeneralist
}

// Archetype is one archetype classification with its supporting evidence.
type Archetype struct {
	Type       ArchetypeType `json:"type"`
	Confidence float64       `json:"confidence"`
	Evidence   []string      `json:"evidence,omitempty"`
}

// ArchetypeResult holds the primary classification plus up to two
// secondary tendencies and the style commentary returned alongside them.
type ArchetypeResult struct {
	Primary             Archetype   `json:"primary"`
	Secondary           []Archetype `json:"secondary,omitempty"`
	Blend               string      `json:"archetype_blend,omitempty"`
	StyleDescription    string      `json:"style_description,omitempty"`
	SignatureMoves      []string    `json:"signature_moves,omitempty"`
	PotentialBlindspots []string    `json:"potential_blindspots,omitempty"`
}

// MBTIDimension is one of the four cognitive dimensions, assessed
// independently of the others. Preference is a single letter (E/I, S/N,
// T/F, J/P).
type MBTIDimension struct {
	Preference string   `json:"preference"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence,omitempty"`
}

// MBTIAssessment is a cognitive-style inference from aggregate debate
// behavior. The four dimensions are evaluated independently and never
// forced to sum to a fixed total. The assessment is advisory; the Caveat
// field carries the service's disclaimer.
type MBTIAssessment struct {
	Type       string  `json:"type"` // e.g. "INTJ"
	Confidence float64 `json:"confidence"`

	EI MBTIDimension `json:"e_i"`
	SN MBTIDimension `json:"s_n"`
	TF MBTIDimension `json:"t_f"`
	JP MBTIDimension `json:"j_p"`

	TypeDescription    string   `json:"type_description,omitempty"`
	DebateImplications []string `json:"debate_implications,omitempty"`
	Caveat             string   `json:"caveat,omitempty"`
}

// GoodFaithAssessment estimates whether the user argues honestly and
// respectfully, derived from civility, concession behavior, and fallacy
// density.
type GoodFaithAssessment struct {
	Score              int      `json:"score"` // 0-100
	Assessment         string   `json:"assessment"`
	PositiveIndicators []string `json:"positive_indicators,omitempty"`
	NegativeIndicators []string `json:"negative_indicators,omitempty"`
	Summary            string   `json:"summary,omitempty"`
}
