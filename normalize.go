package follicle

import (
	"net/url"
	"strings"
	"unicode"
)

// Fallback resource titles when a URL yields no usable path segment.
const (
	defaultResourceTitle = "Educational Resource"
	emptyPathTitle       = "Resource"
)

// patternLabels maps wire-format pattern keys to display labels. Unknown
// keys pass through verbatim.
var patternLabels = map[string]string{
	"early_thinning":       "Early Thinning Pattern",
	"moderate_thinning":    "Moderate Thinning Pattern",
	"advanced_thinning":    "Advanced Thinning Pattern",
	"normal_density":       "Normal Density",
	"slight_variation":     "Slight Density Variation",
	"significant_thinning": "Significant Thinning Pattern",
}

// Normalize maps a backend or simulated response into the stable
// external-facing shape. Numeric scores are clamped to [0,100]; resource
// URLs gain derived titles; everything else passes through aside from
// field-name normalization.
func Normalize(resp *Response) Result {
	resources := make([]Resource, 0, len(resp.EducationalResources))
	for _, raw := range resp.EducationalResources {
		resources = append(resources, Resource{Title: resourceTitle(raw), URL: raw})
	}

	return Result{
		ID:               resp.ID,
		DensityScore:     clampScore(resp.HairDensityScore),
		DensityCategory:  DensityCategory(resp.HairDensityScore),
		PatternType:      patternLabel(resp.PatternType),
		ThinningLevel:    resp.ThinningLevel,
		ScalpHealthScore: clampScore(resp.ScalpHealthScore),
		HairType:         resp.HairType,
		HairLossRisk:     resp.HairLossRisk,
		DandruffRisk:     resp.DandruffRisk,
		Confidence:       clampScore(resp.Confidence),
		Insights:         resp.Insights,
		NextSteps:        resp.NextSteps,
		Resources:        resources,
		Timestamp:        resp.AnalysisTimestamp,
		ProcessingTime:   resp.ProcessingTimeMS,
	}
}

// DensityCategory buckets a density score. Lower bounds are inclusive.
func DensityCategory(score int) string {
	switch {
	case score >= 75:
		return "Healthy"
	case score >= 60:
		return "Good"
	case score >= 45:
		return "Moderate"
	default:
		return "Low"
	}
}

func patternLabel(key string) string {
	if label, ok := patternLabels[key]; ok {
		return label
	}
	return key
}

// resourceTitle derives a readable title from a URL: the last non-empty
// path segment, hyphen-split, each word capitalized. Unparseable or
// non-absolute URLs fall back to a fixed default.
func resourceTitle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return defaultResourceTitle
	}

	last := ""
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			last = seg
		}
	}
	if last == "" {
		return emptyPathTitle
	}

	words := strings.Split(last, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// clampScore bounds a score to [0,100].
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
