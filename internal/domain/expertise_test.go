package domain

import "testing"

func TestLevelFromScore(t *testing.T) {
	cases := []struct {
		score int
		want  ExpertiseLevel
	}{
		{0, LevelNovice},
		{24, LevelNovice},
		{25, LevelBeginner},
		{49, LevelBeginner},
		{50, LevelIntermediate},
		{74, LevelIntermediate},
		{75, LevelAdvanced},
		{89, LevelAdvanced},
		{90, LevelExpert},
		{100, LevelExpert},
	}
	for _, tc := range cases {
		if got := LevelFromScore(tc.score); got != tc.want {
			t.Fatalf("LevelFromScore(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
