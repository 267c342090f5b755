package domain

import "testing"

func TestParseFallacyType(t *testing.T) {
	cases := map[string]struct {
		in   string
		want FallacyType
	}{
		"known":      {"ad_hominem", FallacyAdHominem},
		"straw man":  {"strawman", FallacyStrawman},
		"unknown":    {"made_up_fallacy", FallacyOther},
		"empty":      {"", FallacyOther},
		"upper case": {"Strawman", FallacyOther},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := ParseFallacyType(tc.in); got != tc.want {
				t.Fatalf("ParseFallacyType(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFallacySeverityWeight(t *testing.T) {
	cases := []struct {
		sev  FallacySeverity
		want int
	}{
		{SeverityMinor, 1},
		{SeverityModerate, 2},
		{SeveritySignificant, 3},
		{SeveritySevere, 4},
		{FallacySeverity("bogus"), 1},
	}
	for _, tc := range cases {
		if got := tc.sev.Weight(); got != tc.want {
			t.Fatalf("%q.Weight() = %d, want %d", tc.sev, got, tc.want)
		}
	}
}

func TestBucketDensity(t *testing.T) {
	cases := []struct {
		avg  float64
		want DensityLevel
	}{
		{0, DensityNone},
		{0.49, DensityNone},
		{0.5, DensityLow},
		{1.49, DensityLow},
		{1.5, DensityModerate},
		{2.49, DensityModerate},
		{2.5, DensityHigh},
		{3.49, DensityHigh},
		{3.5, DensityVeryHigh},
		{10, DensityVeryHigh},
	}
	for _, tc := range cases {
		if got := BucketDensity(tc.avg); got != tc.want {
			t.Fatalf("BucketDensity(%v) = %q, want %q", tc.avg, got, tc.want)
		}
	}
}

func TestDensityRankMonotonic(t *testing.T) {
	order := []DensityLevel{DensityNone, DensityLow, DensityModerate, DensityHigh, DensityVeryHigh}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("Rank(%q) = %d not above Rank(%q) = %d",
				order[i], order[i].Rank(), order[i-1], order[i-1].Rank())
		}
	}
}
