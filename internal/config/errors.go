package config

import "errors"

// Configuration validation errors. Package-level sentinels so callers can
// match with errors.Is while the messages stay human-readable.
var (
	// ErrConfigNotFound is returned when the configuration file does not
	// exist. Callers decide whether that matters based on whether the path
	// was explicit.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidFileSize is returned for a negative file-size limit.
	ErrInvalidFileSize = errors.New("invalid max_file_size_mb: must be non-negative")

	// ErrInvalidQuality is returned when jpeg_quality falls outside 0-100.
	ErrInvalidQuality = errors.New("invalid jpeg_quality: must be between 0 and 100")

	// ErrInvalidTimeout is returned for a negative backend timeout.
	ErrInvalidTimeout = errors.New("invalid timeout_seconds: must be non-negative")

	// ErrInvalidThreshold is returned when a quality threshold is negative
	// or a fatal threshold exceeds its advisory counterpart.
	ErrInvalidThreshold = errors.New("invalid quality threshold: fatal thresholds must not exceed advisory ones")
)
