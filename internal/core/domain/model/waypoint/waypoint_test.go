package waypoint_test

import (
	"math"
	"testing"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/waypoint"
	"luna/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func TestNewWaypoint(t *testing.T) {
	t.Run("should create active waypoint", func(t *testing.T) {
		w, err := waypoint.NewWaypoint(kernel.NewUUID(), "Stacks level 1", kernel.MustLocationCode("LIB-1"),
			12.5, 3, 0, map[string]any{"floor": 1.0}, now)

		require.NoError(t, err)
		assert.True(t, w.IsActive())
		assert.Equal(t, "LIB-1", w.Code().String())
		assert.InDelta(t, 12.5, w.X(), 0.0001)
		require.NoError(t, w.ValidateUsable())
	})

	t.Run("should reject invalid coordinates and blank name", func(t *testing.T) {
		_, err := waypoint.NewWaypoint(kernel.NewUUID(), " ", kernel.MustLocationCode("LIB-1"),
			math.NaN(), 0, 0, nil, now)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestWaypoint_Retire(t *testing.T) {
	w, err := waypoint.NewWaypoint(kernel.NewUUID(), "Returns desk", kernel.MustLocationCode("LIB-RETURNS"),
		0, 0, 0, nil, now)
	require.NoError(t, err)

	require.NoError(t, w.Retire())
	require.NoError(t, w.Retire())

	assert.False(t, w.IsActive())
	err = w.ValidateUsable()
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "LIB-RETURNS is retired")
}

func TestRestoreWaypoint(t *testing.T) {
	w, _ := waypoint.NewWaypoint(kernel.NewUUID(), "Dorm A", kernel.MustLocationCode("DORM-A"), 1, 2, 3, nil, now)
	_ = w.Retire()

	restored, err := waypoint.RestoreWaypoint(w.Snapshot())

	require.NoError(t, err)
	assert.Equal(t, w.Snapshot(), restored.Snapshot())
	assert.False(t, restored.IsActive())
}
