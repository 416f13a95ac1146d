package follicle

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// Simulator is the offline stand-in for the inference backend. It maps a
// content fingerprint to a plausible structured result (a pure, total
// function with no error paths) and adds an artificial delay so callers
// exercise the same latency profile as a real submission.
type Simulator struct {
	// Delay is the artificial latency per request. Zero disables it.
	Delay time.Duration
}

// NewSimulator returns a simulator with the configured delay.
func NewSimulator(cfg Config) *Simulator {
	return &Simulator{Delay: cfg.SimulatorDelay}
}

// Analyze implements Backend. The delay is cancellable only by abandoning
// the whole request through the context.
func (s *Simulator) Analyze(ctx context.Context, c Candidate, consent bool) (*Response, error) {
	if !consent {
		return nil, ErrConsentRequired
	}
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	resp := Simulate(Fingerprint(c.Data, c.Filename))
	resp.ID = uuid.NewString()
	resp.AnalysisTimestamp = time.Now().UTC().Format(time.RFC3339)
	return resp, nil
}

// Health implements Backend. The simulator is always reachable.
func (s *Simulator) Health(ctx context.Context) bool {
	return true
}

// Simulate maps a fingerprint to a synthetic analysis. Every field except
// ID and AnalysisTimestamp (stamped per request by Analyze) derives
// deterministically from the fingerprint, so identical uploads reproduce
// identical results.
func Simulate(fp int32) *Response {
	density := 35 + int(fp%55)
	confidence := 65 + int(fp%30)
	processing := 1100 + int(fp%800)

	scalp := int(math.Round(0.6*float64(density) + 0.4*float64(confidence) + float64(fp%10) - 5))
	scalp = min(max(scalp, 35), 95)

	var hairType string
	switch fp % 3 {
	case 0:
		hairType = "Normal"
	case 1:
		hairType = "Oily"
	default:
		hairType = "Dry"
	}

	thinning := "High"
	switch {
	case density >= 70:
		thinning = "Low"
	case density >= 50:
		thinning = "Medium"
	}

	lossRisk := "High"
	switch {
	case density >= 70:
		lossRisk = "Low"
	case density >= 55:
		lossRisk = "Medium"
	}

	dandruff := "Low"
	even := fp%2 == 0
	switch hairType {
	case "Dry":
		if even {
			dandruff = "High"
		} else {
			dandruff = "Medium"
		}
	case "Oily":
		if even {
			dandruff = "Medium"
		} else {
			dandruff = "Low"
		}
	}

	b := bandFor(density)
	insights := append([]string(nil), b.insights...)
	for i := 0; i < int(fp%3); i++ {
		insights = append(insights, extraInsights[(int(fp)+i*7)%len(extraInsights)])
	}

	return &Response{
		HairDensityScore:     density,
		PatternType:          b.pattern,
		ThinningLevel:        thinning,
		ScalpHealthScore:     scalp,
		HairType:             hairType,
		HairLossRisk:         lossRisk,
		DandruffRisk:         dandruff,
		Confidence:           confidence,
		Insights:             insights,
		NextSteps:            append([]string(nil), b.nextSteps...),
		EducationalResources: append([]string(nil), resourceURLs...),
		ProcessingTimeMS:     processing,
	}
}

// band is the static copy attached to a density range. The text is domain
// copy, not computed.
type band struct {
	minScore  int
	pattern   string
	insights  []string
	nextSteps []string
}

// bandFor selects the density band; bands carry inclusive lower bounds.
func bandFor(density int) band {
	for _, b := range densityBands {
		if density >= b.minScore {
			return b
		}
	}
	return densityBands[len(densityBands)-1]
}

var densityBands = []band{
	{
		minScore: 75,
		pattern:  "normal_density",
		insights: []string{
			"Hair density appears to be in a healthy range based on visual analysis.",
			"Scalp coverage is relatively uniform across the visible area.",
			"No significant pattern changes detected in this assessment.",
			"Current hair characteristics suggest normal follicular activity.",
		},
		nextSteps: []string{
			"Maintain current hair care routine and healthy lifestyle habits.",
			"Consider periodic monitoring to track any future changes.",
			"Continue protecting scalp from sun exposure and harsh treatments.",
		},
	},
	{
		minScore: 60,
		pattern:  "slight_variation",
		insights: []string{
			"Overall hair density remains in a good range.",
			"Minor variations in density detected across different areas.",
			"Some natural fluctuation is visible, which can be age-related.",
			"Scalp visibility is minimal in most areas.",
		},
		nextSteps: []string{
			"Monitor changes over the next 3-6 months for any progression.",
			"Consider consulting a dermatologist for personalized advice.",
			"Evaluate current stress levels and nutritional habits.",
			"Document progress with periodic photos for comparison.",
		},
	},
	{
		minScore: 45,
		pattern:  "moderate_thinning",
		insights: []string{
			"Noticeable reduction in hair density compared to typical ranges.",
			"Pattern suggests gradual changes in hair characteristics.",
			"Some areas show more scalp visibility than others.",
			"This level of change is commonly associated with various factors.",
		},
		nextSteps: []string{
			"Professional consultation recommended for baseline assessment.",
			"Discuss potential contributing factors with a healthcare provider.",
			"Consider blood work to rule out nutritional deficiencies.",
			"Explore evidence-based hair care approaches with a specialist.",
		},
	},
	{
		minScore: 0,
		pattern:  "significant_thinning",
		insights: []string{
			"Significant reduction in hair density detected across the visible area.",
			"Pattern changes are prominent and likely progressive.",
			"Scalp is highly visible in multiple zones.",
			"Early intervention may help address contributing factors.",
		},
		nextSteps: []string{
			"Consult a board-certified dermatologist as soon as possible.",
			"Request comprehensive evaluation including scalp examination.",
			"Discuss medical history and potential underlying causes.",
			"Explore clinically-proven treatment options with your provider.",
			"Consider lifestyle factors: stress, nutrition, and sleep quality.",
		},
	},
}

// extraInsights is the fixed pool of 0-2 appended insight strings, indexed
// by (fingerprint + i*7) mod len.
var extraInsights = []string{
	"Image quality was sufficient for analysis.",
	"Lighting conditions allowed for clear assessment.",
	"Multiple hair characteristics were evaluated.",
	"Analysis focused on visible density patterns.",
}

// resourceURLs are always attached, unconditionally.
var resourceURLs = []string{
	"https://www.aad.org/public/diseases/hair-loss",
	"https://www.ncbi.nlm.nih.gov/pmc/articles/PMC6380979/",
	"https://www.hopkinsmedicine.org/health/conditions-and-diseases/hair-loss",
}
