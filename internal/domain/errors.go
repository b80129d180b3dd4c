package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidLevel is returned when a level is outside the range the
	// remote provider can report.
	ErrInvalidLevel = errors.New("level out of range")

	// ErrInvalidStreak is returned when a review streak is negative.
	ErrInvalidStreak = errors.New("streak cannot be negative")
)
