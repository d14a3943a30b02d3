package domain

import "errors"

// Domain errors
var (
	// Authentication errors
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrMissingToken          = errors.New("refresh token is missing")
	ErrInvalidOrExpiredToken = errors.New("token is invalid or expired")
	ErrRevokedToken          = errors.New("refresh token has been revoked")
	ErrTokenNotFound         = errors.New("refresh token not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrUnauthenticated       = errors.New("authentication is required")

	// Authorization errors
	ErrForbidden     = errors.New("access denied")
	ErrUserSuspended = errors.New("account is suspended")

	// Validation errors
	ErrDuplicateEmail   = errors.New("email is already registered")
	ErrAttemptsExceeded = errors.New("maximum attempts exceeded for this activity")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrValidation       = errors.New("validation failed")

	// Not found errors
	ErrActivityNotFound   = errors.New("activity not found")
	ErrLevelNotFound      = errors.New("level not found")
	ErrContentNotFound    = errors.New("content not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrProgressNotFound   = errors.New("progress not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrAccountNotFound    = errors.New("account not found")

	// Integrity errors
	ErrRequirementsNotMet = errors.New("all required activities must be passed to complete this level")

	// ErrAttemptConflict signals a concurrent submission took the same attempt number
	ErrAttemptConflict = errors.New("attempt number already taken")
)

// IsAuthenticationError checks if the error is an authentication failure
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidOrExpiredToken) ||
		errors.Is(err, ErrRevokedToken) ||
		errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrUnauthenticated)
}

// IsAuthorizationError checks if the error is an authorization failure
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUserSuspended)
}

// IsValidationError checks if the error is a validation or integrity failure
func IsValidationError(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrAttemptsExceeded) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrRequirementsNotMet)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrLevelNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrAccountNotFound)
}
