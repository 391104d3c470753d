package services

import "errors"

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal error")

	// Session specific errors
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionNotActive        = errors.New("session is not active")
	ErrSessionAlreadyStarted   = errors.New("session already started")
	ErrSessionAlreadySubmitted = errors.New("session already submitted")
	ErrSessionExpired          = errors.New("session time has expired")

	// Submission specific errors
	ErrSubmissionFailed  = errors.New("submission failed")
	ErrResultUnavailable = errors.New("submission result not available")
)

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsConflict checks if error represents a state conflict the caller can
// recover from by reading the current session state
func IsConflict(err error) bool {
	return errors.Is(err, ErrSessionAlreadyStarted) ||
		errors.Is(err, ErrSessionAlreadySubmitted) ||
		errors.Is(err, ErrSessionNotActive) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrResultUnavailable)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}
