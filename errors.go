package follicle

import "errors"

// Domain-level failures. These are the only errors a presentation layer is
// expected to show verbatim; transport detail stays in the logs.
var (
	// ErrConsentRequired is returned when a candidate reaches the pipeline
	// without the user's consent flag set. Nothing is decoded or uploaded.
	ErrConsentRequired = errors.New("follicle: please accept the terms to continue")

	// ErrAnalysisFailed is the single user-facing translation of every
	// transport failure: timeout, connection error, or a non-2xx backend
	// response. Retry policy is the caller's decision.
	ErrAnalysisFailed = errors.New("follicle: analysis failed, please try again")
)

// ValidationError is a local admission or quality rejection. It carries the
// advisory warnings collected before the fatal check so they can surface
// alongside the reason.
type ValidationError struct {
	// Reason is the blocking failure, in user-facing copy.
	Reason string

	// Warnings are the advisories accumulated before the rejection.
	Warnings []string
}

// Error returns the rejection reason.
func (e *ValidationError) Error() string {
	return e.Reason
}

// BackendError is a failure message supplied by the backend itself.
// It satisfies errors.Is(err, ErrAnalysisFailed).
type BackendError struct {
	// Message is the backend-provided, user-facing message.
	Message string
}

// Error returns the backend-provided message.
func (e *BackendError) Error() string {
	return e.Message
}

// Is reports ErrAnalysisFailed so callers can match the whole transport
// failure class without inspecting concrete types.
func (e *BackendError) Is(target error) bool {
	return target == ErrAnalysisFailed
}
