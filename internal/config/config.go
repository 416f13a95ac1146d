// Package config loads optional YAML overrides for the pipeline defaults.
// Every threshold in the quality gate is an empirically chosen constant,
// so all of them are exposed here rather than hard-coded.
package config

import (
	"time"

	"github.com/follicleai/follicle"
)

// File is the YAML configuration shape. Zero-valued fields keep the
// library defaults, so a config file only needs the fields it changes.
type File struct {
	// MaxFileSizeMB is the admission byte limit in MiB.
	MaxFileSizeMB int64 `yaml:"max_file_size_mb"`

	// AcceptedTypes are the admissible declared media types.
	AcceptedTypes []string `yaml:"accepted_types"`

	// MinDimension is the admission floor for width and height.
	MinDimension int `yaml:"min_dimension"`

	// MaxDimension is the slow-processing advisory threshold.
	MaxDimension int `yaml:"max_dimension"`

	// LowResolution is the reduced-accuracy advisory threshold.
	LowResolution int `yaml:"low_resolution"`

	// DarkBrightness is the fatal mean-luma floor.
	DarkBrightness float64 `yaml:"dark_brightness"`

	// LowBrightness is the low-light advisory threshold.
	LowBrightness float64 `yaml:"low_brightness"`

	// HighBrightness is the overexposure advisory threshold.
	HighBrightness float64 `yaml:"high_brightness"`

	// MinContrastVariance is the low-contrast advisory threshold.
	MinContrastVariance float64 `yaml:"min_contrast_variance"`

	// BlurVariance is the fatal Laplacian-variance floor.
	BlurVariance float64 `yaml:"blur_variance"`

	// SlightBlurVariance is the slight-blur advisory threshold.
	SlightBlurVariance float64 `yaml:"slight_blur_variance"`

	// CompressMaxDimension caps the longest side before submission.
	CompressMaxDimension int `yaml:"compress_max_dimension"`

	// CompressAboveKB forces re-encoding at or above this payload size.
	CompressAboveKB int64 `yaml:"compress_above_kb"`

	// JPEGQuality is the re-encode quality (1-100).
	JPEGQuality int `yaml:"jpeg_quality"`

	// BackendURL is the remote backend base URL.
	BackendURL string `yaml:"backend_url"`

	// TimeoutSeconds bounds each backend call.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// SimulatorDelayMS is the artificial latency of the simulation path.
	SimulatorDelayMS int `yaml:"simulator_delay_ms"`

	// HistoryDir overrides the default analysis-history location.
	HistoryDir string `yaml:"history_dir"`
}

// Apply layers the file's non-zero fields over cfg and returns the result.
func (f *File) Apply(cfg follicle.Config) follicle.Config {
	if f == nil {
		return cfg
	}
	if f.MaxFileSizeMB > 0 {
		cfg.MaxFileSize = f.MaxFileSizeMB << 20
	}
	if len(f.AcceptedTypes) > 0 {
		cfg.AcceptedTypes = f.AcceptedTypes
	}
	if f.MinDimension > 0 {
		cfg.MinWidth = f.MinDimension
		cfg.MinHeight = f.MinDimension
	}
	if f.MaxDimension > 0 {
		cfg.MaxWidth = f.MaxDimension
		cfg.MaxHeight = f.MaxDimension
	}
	if f.LowResolution > 0 {
		cfg.LowResolution = f.LowResolution
	}
	if f.DarkBrightness > 0 {
		cfg.DarkBrightness = f.DarkBrightness
	}
	if f.LowBrightness > 0 {
		cfg.LowBrightness = f.LowBrightness
	}
	if f.HighBrightness > 0 {
		cfg.HighBrightness = f.HighBrightness
	}
	if f.MinContrastVariance > 0 {
		cfg.MinContrastVariance = f.MinContrastVariance
	}
	if f.BlurVariance > 0 {
		cfg.BlurVariance = f.BlurVariance
	}
	if f.SlightBlurVariance > 0 {
		cfg.SlightBlurVariance = f.SlightBlurVariance
	}
	if f.CompressMaxDimension > 0 {
		cfg.CompressMaxDimension = f.CompressMaxDimension
	}
	if f.CompressAboveKB > 0 {
		cfg.CompressAbove = f.CompressAboveKB << 10
	}
	if f.JPEGQuality > 0 {
		cfg.JPEGQuality = f.JPEGQuality
	}
	if f.BackendURL != "" {
		cfg.BaseURL = f.BackendURL
	}
	if f.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(f.TimeoutSeconds) * time.Second
	}
	if f.SimulatorDelayMS > 0 {
		cfg.SimulatorDelay = time.Duration(f.SimulatorDelayMS) * time.Millisecond
	}
	return cfg
}

// Validate checks the file for values that would break the pipeline.
func (f *File) Validate() error {
	if f.MaxFileSizeMB < 0 {
		return ErrInvalidFileSize
	}
	if f.JPEGQuality < 0 || f.JPEGQuality > 100 {
		return ErrInvalidQuality
	}
	if f.TimeoutSeconds < 0 {
		return ErrInvalidTimeout
	}
	if f.DarkBrightness < 0 || f.BlurVariance < 0 {
		return ErrInvalidThreshold
	}
	if f.DarkBrightness > f.LowBrightness && f.LowBrightness > 0 {
		return ErrInvalidThreshold
	}
	if f.BlurVariance > f.SlightBlurVariance && f.SlightBlurVariance > 0 {
		return ErrInvalidThreshold
	}
	return nil
}
