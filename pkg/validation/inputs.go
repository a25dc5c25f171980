package validation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is the error kind returned by every calculator when an
// input falls outside its documented domain. Callers match it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Invalid wraps ErrInvalidInput with the offending field and a reason.
func Invalid(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, fmt.Sprintf(format, args...))
}

// Finite rejects NaN and infinite values.
func Finite(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Invalid(field, "must be a finite number, got %v", value)
	}
	return nil
}

// NonNegative rejects values below zero.
func NonNegative(field string, value float64) error {
	if err := Finite(field, value); err != nil {
		return err
	}
	if value < 0 {
		return Invalid(field, "must not be negative, got %v", value)
	}
	return nil
}

// Positive rejects values at or below zero.
func Positive(field string, value float64) error {
	if err := Finite(field, value); err != nil {
		return err
	}
	if value <= 0 {
		return Invalid(field, "must be greater than zero, got %v", value)
	}
	return nil
}

// IntRange rejects integers outside [min, max].
func IntRange(field string, value, min, max int) error {
	if value < min || value > max {
		return Invalid(field, "must be between %d and %d, got %d", min, max, value)
	}
	return nil
}

// FirstError returns the first non-nil error, letting callers list checks in order.
func FirstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
