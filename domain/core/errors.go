package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrStimulusNotFound = fmt.Errorf("%w: stimulus", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("%w: session", ErrNotFound)
	ErrAnswerNotFound   = fmt.Errorf("%w: answer", ErrNotFound)

	// Generation errors
	ErrInsufficientSamples = errors.New("sample size too small for correlation")
	ErrDegenerateVariance  = errors.New("zero variance on one axis")
	ErrInvalidRange        = errors.New("invalid axis range")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrSeedMismatch     = errors.New("seed mismatch")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsGenerationError(err error) bool {
	return errors.Is(err, ErrInsufficientSamples) ||
		errors.Is(err, ErrDegenerateVariance) ||
		errors.Is(err, ErrInvalidRange)
}
