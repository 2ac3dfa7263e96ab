package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/field"
	"github.com/sciborgs1155/aion/internal/monitoring"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	// Verify nil error doesn't cause issues
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	// Verify non-nil error is handled correctly
	AssertError(t, errors.New("test error"))
}

func TestAssertInDelta(t *testing.T) {
	t.Parallel()

	AssertInDelta(t, "speed", 6.7501, 6.75, 1e-3)
	AssertVecInDelta(t, "v", r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3.0001}, 1e-3)
}

func TestCenterShooter(t *testing.T) {
	t.Parallel()

	x, y := CenterShooter(field.Default(), 2)
	assert.Equal(t, 2.0, x)
	assert.InDelta(t, 4.1148, y, 1e-12)
}

func TestQuietLogs(t *testing.T) {
	var called bool
	original := monitoring.Logf
	monitoring.SetLogger(func(string, ...interface{}) { called = true })
	defer func() { monitoring.Logf = original }()

	t.Run("muted", func(t *testing.T) {
		QuietLogs(t)
		monitoring.Logf("hidden")
	})
	assert.False(t, called)

	monitoring.Logf("visible")
	assert.True(t, called, "logger restored after subtest cleanup")
}
