package analysis

import (
	"context"
	"testing"

	"github.com/erislabs/go-debate-backend/internal/domain"
)

func TestFallacyAnalyzeDebate_FiltersByConfidence(t *testing.T) {
	client := &fakeClient{respond: respondJSON(`{
		"thread_id": "t1",
		"fallacies_detected": [
			{"type": "strawman", "confidence": 0.9, "severity": "moderate", "user_statement": "so you want anarchy", "comment_id": "c1"},
			{"type": "ad_hominem", "confidence": 0.6, "severity": "severe", "user_statement": "clearly uneducated", "comment_id": "c2"},
			{"type": "made_up_fallacy", "confidence": 0.8, "severity": "bogus", "user_statement": "x", "comment_id": "c3"}
		],
		"overall_fallacy_density": "moderate"
	}`)}
	analyzer := NewFallacyAnalyzer(client, testAnalysisCfg())

	res, err := analyzer.AnalyzeDebate(context.Background(), newDebate("t1", "politics", domain.OutcomeDraw))
	if err != nil {
		t.Fatalf("AnalyzeDebate: %v", err)
	}
	if len(res.Instances) != 2 {
		t.Fatalf("instances = %d, want 2 (confidence 0.6 below floor)", len(res.Instances))
	}
	if res.Density != domain.DensityModerate {
		t.Errorf("density = %q, want moderate", res.Density)
	}
	if res.Instances[0].Type != domain.FallacyStrawman {
		t.Errorf("type = %q, want strawman", res.Instances[0].Type)
	}
	// Unknown type and severity normalize instead of failing.
	if res.Instances[1].Type != domain.FallacyOther {
		t.Errorf("unknown type = %q, want other", res.Instances[1].Type)
	}
	if res.Instances[1].Severity != domain.SeverityMinor {
		t.Errorf("unknown severity = %q, want minor", res.Instances[1].Severity)
	}
	if res.Instances[0].ID == "" || res.Instances[0].DebateID != "t1" {
		t.Errorf("instance identity not set: %+v", res.Instances[0])
	}
}

func TestFallacyAnalyzeDebate_EmptyDensityDefaultsLow(t *testing.T) {
	client := &fakeClient{respond: respondJSON(`{"fallacies_detected": []}`)}
	analyzer := NewFallacyAnalyzer(client, testAnalysisCfg())

	res, err := analyzer.AnalyzeDebate(context.Background(), newDebate("t1", "other", domain.OutcomeDraw))
	if err != nil {
		t.Fatalf("AnalyzeDebate: %v", err)
	}
	if res.Density != domain.DensityLow {
		t.Fatalf("density = %q, want low", res.Density)
	}
}

func TestBuildProfile_Aggregates(t *testing.T) {
	instance := func(ft domain.FallacyType, sev domain.FallacySeverity) domain.FallacyInstance {
		return domain.FallacyInstance{Type: ft, Severity: sev}
	}
	results := []*DebateFallacies{
		{
			ThreadID: "t1",
			Density:  domain.DensityHigh,
			Instances: []domain.FallacyInstance{
				instance(domain.FallacyStrawman, domain.SeverityModerate),
				instance(domain.FallacyStrawman, domain.SeveritySevere),
				instance(domain.FallacyAdHominem, domain.SeverityMinor),
			},
		},
		{
			ThreadID: "t2",
			Density:  domain.DensityLow,
			Instances: []domain.FallacyInstance{
				instance(domain.FallacyStrawman, domain.SeverityModerate),
			},
		},
	}

	p := BuildProfile(results)

	if p.TotalFallacies != 4 {
		t.Fatalf("TotalFallacies = %d, want 4", p.TotalFallacies)
	}
	if p.FallacyCounts[domain.FallacyStrawman] != 3 {
		t.Errorf("strawman count = %d, want 3", p.FallacyCounts[domain.FallacyStrawman])
	}
	if p.FallacyBySeverity[domain.SeverityModerate] != 2 {
		t.Errorf("moderate count = %d, want 2", p.FallacyBySeverity[domain.SeverityModerate])
	}

	// Ranks (3 + 1) / 2 = 2.0 -> moderate.
	if p.AvgDensity != domain.DensityModerate {
		t.Errorf("AvgDensity = %q, want moderate", p.AvgDensity)
	}

	if len(p.RankedFallacies) != 2 {
		t.Fatalf("RankedFallacies = %d, want 2", len(p.RankedFallacies))
	}
	top := p.RankedFallacies[0]
	if top.Type != domain.FallacyStrawman || top.Count != 3 {
		t.Fatalf("top fallacy = %s x%d, want strawman x3", top.Type, top.Count)
	}
	if top.Percentage != 75.0 {
		t.Errorf("Percentage = %v, want 75.0", top.Percentage)
	}
	// Severity weights 2 + 4 + 2 over three instances.
	if top.AvgSeverity != 2.67 {
		t.Errorf("AvgSeverity = %v, want 2.67", top.AvgSeverity)
	}
	if len(top.Instances) != 3 {
		t.Errorf("example instances = %d, want 3", len(top.Instances))
	}
	if p.Notes == "" {
		t.Error("Notes empty")
	}
}

func TestBuildProfile_NoFallacies(t *testing.T) {
	p := BuildProfile(nil)
	if p.TotalFallacies != 0 {
		t.Fatalf("TotalFallacies = %d, want 0", p.TotalFallacies)
	}
	if p.AvgDensity != domain.DensityLow {
		t.Errorf("AvgDensity = %q, want low", p.AvgDensity)
	}
	if p.Notes != "No logical fallacies detected in analyzed debates." {
		t.Errorf("Notes = %q", p.Notes)
	}
	if len(p.RankedFallacies) != 0 {
		t.Errorf("RankedFallacies = %d, want 0", len(p.RankedFallacies))
	}
}

func TestBuildProfile_CapsExampleInstances(t *testing.T) {
	res := &DebateFallacies{ThreadID: "t1", Density: domain.DensityVeryHigh}
	for i := 0; i < 8; i++ {
		res.Instances = append(res.Instances, domain.FallacyInstance{
			Type: domain.FallacyAdHominem, Severity: domain.SeverityMinor,
		})
	}
	p := BuildProfile([]*DebateFallacies{res})
	if len(p.RankedFallacies[0].Instances) != 5 {
		t.Fatalf("example instances = %d, want 5", len(p.RankedFallacies[0].Instances))
	}
	if p.RankedFallacies[0].Count != 8 {
		t.Fatalf("Count = %d, want 8", p.RankedFallacies[0].Count)
	}
}
