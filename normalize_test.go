package follicle

import "testing"

func TestDensityCategoryBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "Healthy"},
		{75, "Healthy"},
		{74, "Good"},
		{60, "Good"},
		{59, "Moderate"},
		{45, "Moderate"},
		{44, "Low"},
		{0, "Low"},
	}
	for _, c := range cases {
		if got := DensityCategory(c.score); got != c.want {
			t.Fatalf("DensityCategory(%d) should be %q, got %q", c.score, c.want, got)
		}
	}
}

func TestPatternLabels(t *testing.T) {
	cases := []struct{ key, want string }{
		{"normal_density", "Normal Density"},
		{"slight_variation", "Slight Density Variation"},
		{"early_thinning", "Early Thinning Pattern"},
		{"moderate_thinning", "Moderate Thinning Pattern"},
		{"advanced_thinning", "Advanced Thinning Pattern"},
		{"significant_thinning", "Significant Thinning Pattern"},
		{"future_pattern", "future_pattern"}, // unknown keys pass through
	}
	for _, c := range cases {
		if got := patternLabel(c.key); got != c.want {
			t.Fatalf("patternLabel(%q) should be %q, got %q", c.key, c.want, got)
		}
	}
}

func TestResourceTitles(t *testing.T) {
	cases := []struct{ url, want string }{
		{"https://www.aad.org/public/diseases/hair-loss", "Hair Loss"},
		{"https://www.ncbi.nlm.nih.gov/pmc/articles/PMC6380979/", "PMC6380979"},
		{"https://example.com/scalp-care-basics", "Scalp Care Basics"},
		{"https://example.com", "Resource"},
		{"https://example.com/", "Resource"},
		{"not a url at all ::", "Educational Resource"},
		{"relative/path/only", "Educational Resource"},
	}
	for _, c := range cases {
		if got := resourceTitle(c.url); got != c.want {
			t.Fatalf("resourceTitle(%q) should be %q, got %q", c.url, c.want, got)
		}
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct{ in, want int }{
		{-5, 0},
		{0, 0},
		{50, 50},
		{100, 100},
		{140, 100},
	}
	for _, c := range cases {
		if got := clampScore(c.in); got != c.want {
			t.Fatalf("clampScore(%d) should be %d, got %d", c.in, c.want, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	resp := &Response{
		ID:                   "req-1",
		HairDensityScore:     130,
		PatternType:          "normal_density",
		ThinningLevel:        "Low",
		ScalpHealthScore:     -10,
		HairType:             "Dry",
		HairLossRisk:         "Low",
		DandruffRisk:         "Medium",
		Confidence:           88,
		Insights:             []string{"a", "b"},
		NextSteps:            []string{"c"},
		EducationalResources: []string{"https://example.com/hair-loss"},
		AnalysisTimestamp:    "2026-01-02T03:04:05Z",
		ProcessingTimeMS:     1234,
	}

	r := Normalize(resp)

	if r.DensityScore != 100 {
		t.Fatalf("density should clamp to 100, got %d", r.DensityScore)
	}
	// Category is bucketed from the raw score, before clamping.
	if r.DensityCategory != "Healthy" {
		t.Fatalf("category should be Healthy, got %q", r.DensityCategory)
	}
	if r.ScalpHealthScore != 0 {
		t.Fatalf("scalp health should clamp to 0, got %d", r.ScalpHealthScore)
	}
	if r.PatternType != "Normal Density" {
		t.Fatalf("pattern should be labeled, got %q", r.PatternType)
	}
	if len(r.Resources) != 1 || r.Resources[0].Title != "Hair Loss" || r.Resources[0].URL != "https://example.com/hair-loss" {
		t.Fatalf("unexpected resources: %+v", r.Resources)
	}
	if r.Timestamp != "2026-01-02T03:04:05Z" || r.ProcessingTime != 1234 || r.ID != "req-1" {
		t.Fatal("pass-through fields should be preserved")
	}
	if len(r.Insights) != 2 || len(r.NextSteps) != 1 {
		t.Fatal("insights and next steps should pass through")
	}
}
