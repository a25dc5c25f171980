// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"
)

// AssertClose fails the test when got and want differ by more than tolerance.
func AssertClose(t testing.TB, label string, got, want, tolerance float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tolerance {
		t.Errorf("%s = %.6f, expected %.6f (tolerance %g)", label, got, want, tolerance)
	}
}

// AssertNonDecreasing fails the test when values ever decrease by more than tolerance.
func AssertNonDecreasing(t testing.TB, label string, values []float64, tolerance float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1]-tolerance {
			t.Errorf("%s decreased at index %d: %.6f -> %.6f", label, i, values[i-1], values[i])
			return
		}
	}
}
