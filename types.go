package follicle

import (
	"time"
)

// Version is the library version.
const Version = "1.0.0"

// Media types accepted by the default configuration.
const (
	MediaJPEG = "image/jpeg"
	MediaPNG  = "image/png"
	MediaWebP = "image/webp"
)

// Candidate is an image submitted for analysis. It owns its raw bytes, the
// declared media type, and the decoded pixel dimensions once probed.
// A Candidate is never mutated once it enters the pipeline; compression
// produces a new Candidate.
type Candidate struct {
	// Data is the raw file content.
	Data []byte

	// MediaType is the declared MIME type (e.g. "image/jpeg").
	MediaType string

	// Filename is the original file name. It seeds the content fingerprint
	// and the derived name of a compressed candidate.
	Filename string

	// Width and Height are the decoded pixel dimensions. Zero until probed.
	Width, Height int
}

// Size returns the byte length of the candidate's content.
func (c Candidate) Size() int64 {
	return int64(len(c.Data))
}

// Validation is the outcome of an admission or quality check. Exactly one
// shape is ever present: accepted (OK, with zero or more advisories) or
// rejected (a single blocking reason, delivered together with any warnings
// collected before the fatal check).
type Validation struct {
	// OK reports whether the candidate may proceed.
	OK bool

	// Reason is the rejection reason. Empty when OK.
	Reason string

	// Warnings are non-blocking advisories, in collection order.
	Warnings []string
}

// QualityMetrics holds the pixel statistics computed by the quality
// analyzer. A pure function of pixel data, recomputed on every call.
type QualityMetrics struct {
	// BrightnessMean is the mean luma over the sampled grid (0-255).
	BrightnessMean float64

	// BrightnessVariance is the population variance of luma.
	BrightnessVariance float64

	// SharpnessVariance is the population variance of the discrete
	// Laplacian over interior pixels. Low values indicate blur.
	SharpnessVariance float64
}

// Compression is the result of the conditional re-encode step.
type Compression struct {
	// Candidate is the possibly-new candidate. When WasCompressed is false
	// this is the original candidate unmodified.
	Candidate Candidate

	// WasCompressed reports whether a new candidate was produced.
	WasCompressed bool

	// Preview is a base64 data URL of the final bytes, for presentation use.
	Preview string
}

// Response is the pre-normalization analysis payload. The remote backend
// and the simulator both produce this shape; field names follow the
// backend's wire format.
type Response struct {
	ID                   string   `json:"id"`
	HairDensityScore     int      `json:"hair_density_score"`
	PatternType          string   `json:"pattern_type"`
	ThinningLevel        string   `json:"thinning_level"`
	ScalpHealthScore     int      `json:"scalp_health_score"`
	HairType             string   `json:"hair_type"`
	HairLossRisk         string   `json:"hair_loss_risk"`
	DandruffRisk         string   `json:"dandruff_risk"`
	Confidence           int      `json:"confidence"`
	Insights             []string `json:"insights"`
	NextSteps            []string `json:"next_steps,omitempty"`
	EducationalResources []string `json:"educational_resources"`
	AnalysisTimestamp    string   `json:"analysis_timestamp"`
	ProcessingTimeMS     int      `json:"processing_time_ms"`
}

// Resource is an educational link with a human-readable title.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Result is the stable external-facing analysis shape. It is identical
// regardless of whether the input came from the real backend or the
// simulator. Every score is clamped to [0,100].
type Result struct {
	ID               string     `json:"id"`
	DensityScore     int        `json:"densityScore"`
	DensityCategory  string     `json:"densityCategory"`
	PatternType      string     `json:"patternType"`
	ThinningLevel    string     `json:"thinningLevel"`
	ScalpHealthScore int        `json:"scalpHealthScore"`
	HairType         string     `json:"hairType"`
	HairLossRisk     string     `json:"hairLossRisk"`
	DandruffRisk     string     `json:"dandruffRisk"`
	Confidence       int        `json:"confidence"`
	Insights         []string   `json:"insights"`
	NextSteps        []string   `json:"nextSteps,omitempty"`
	Resources        []Resource `json:"resources"`
	Timestamp        string     `json:"timestamp"`
	ProcessingTime   int        `json:"processingTime"`
}

// Outcome is what a full pipeline run hands back to the caller.
type Outcome struct {
	// Result is the normalized analysis result.
	Result Result

	// Warnings are the non-blocking quality advisories, in order.
	Warnings []string

	// WasCompressed reports whether the upload was re-encoded before
	// submission.
	WasCompressed bool

	// Preview is a data URL of the submitted bytes, for presentation use.
	Preview string
}

// Config holds every tunable of the pipeline. The zero value is not useful;
// start from DefaultConfig and override fields as needed. The quality
// thresholds are empirically chosen defaults, not physical constants.
type Config struct {
	// MaxFileSize is the admission byte limit.
	MaxFileSize int64

	// AcceptedTypes are the admissible declared media types.
	AcceptedTypes []string

	// MinWidth and MinHeight are the admission dimension floor.
	MinWidth, MinHeight int

	// MaxWidth and MaxHeight trigger a slow-processing advisory when
	// exceeded. They never reject.
	MaxWidth, MaxHeight int

	// LowResolution triggers a reduced-accuracy advisory for images whose
	// width or height falls below it.
	LowResolution int

	// SampleSize bounds the longest side of the quality-analysis grid.
	SampleSize int

	// DarkBrightness is the fatal mean-luma floor.
	DarkBrightness float64

	// LowBrightness is the low-light advisory threshold.
	LowBrightness float64

	// HighBrightness is the overexposure advisory threshold.
	HighBrightness float64

	// MinContrastVariance is the low-contrast advisory threshold.
	MinContrastVariance float64

	// BlurVariance is the fatal Laplacian-variance floor.
	BlurVariance float64

	// SlightBlurVariance is the slight-blur advisory threshold.
	SlightBlurVariance float64

	// CompressMaxDimension caps the longest side of a submitted image.
	CompressMaxDimension int

	// CompressAbove forces re-encoding for payloads at or above this size
	// even when no downscale is needed.
	CompressAbove int64

	// JPEGQuality is the re-encode quality (1-100).
	JPEGQuality int

	// AutoOrient applies the EXIF orientation tag before analysis.
	AutoOrient bool

	// BaseURL is the remote backend base URL.
	BaseURL string

	// Timeout bounds each remote backend call.
	Timeout time.Duration

	// SimulatorDelay is the artificial latency of the simulation path.
	SimulatorDelay time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxFileSize:          10 << 20,
		AcceptedTypes:        []string{MediaJPEG, MediaPNG, MediaWebP},
		MinWidth:             400,
		MinHeight:            400,
		MaxWidth:             4096,
		MaxHeight:            4096,
		LowResolution:        600,
		SampleSize:           200,
		DarkBrightness:       40,
		LowBrightness:        70,
		HighBrightness:       220,
		MinContrastVariance:  300,
		BlurVariance:         45,
		SlightBlurVariance:   90,
		CompressMaxDimension: 1600,
		CompressAbove:        3 << 19, // 1.5 MiB
		JPEGQuality:          82,
		AutoOrient:           true,
		BaseURL:              "http://localhost:3000/api",
		Timeout:              30 * time.Second,
		SimulatorDelay:       1800 * time.Millisecond,
	}
}

// accepts reports whether the declared media type is admissible.
func (c Config) accepts(mediaType string) bool {
	for _, t := range c.AcceptedTypes {
		if t == mediaType {
			return true
		}
	}
	return false
}
