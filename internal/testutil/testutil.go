// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across the solver packages' test files.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/field"
	"github.com/sciborgs1155/aion/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertInDelta fails the test if got is further than delta from want.
func AssertInDelta(t *testing.T, name string, got, want, delta float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > delta {
		t.Errorf("%s = %v, want %v ± %v", name, got, want, delta)
	}
}

// AssertVecInDelta compares two vectors component-wise.
func AssertVecInDelta(t *testing.T, name string, got, want r3.Vec, delta float64) {
	t.Helper()
	AssertInDelta(t, name+".X", got.X, want.X, delta)
	AssertInDelta(t, name+".Y", got.Y, want.Y, delta)
	AssertInDelta(t, name+".Z", got.Z, want.Z, delta)
}

// CenterShooter returns a ground position on the field midline at distance
// x from the wall.
func CenterShooter(p field.Params, x float64) (float64, float64) {
	return x, p.FieldWidth / 2
}

// QuietLogs mutes monitoring.Logf for the duration of the test.
func QuietLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}
