package services_test

import (
	"testing"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/domain/model/waypoint"
	"luna/internal/core/domain/services"
	"luna/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWaypoint(t *testing.T, code string) *waypoint.Waypoint {
	t.Helper()
	w, err := waypoint.NewWaypoint(kernel.NewUUID(), code+" point", kernel.MustLocationCode(code), 0, 0, 0, nil, now)
	require.NoError(t, err)
	return w
}

func taskWithStops(t *testing.T, stops ...task.Stop) *task.Task {
	t.Helper()
	ref, _ := task.RequestReference(kernel.NewUUID())
	tk, err := task.NewTask(kernel.NewUUID(), ref, task.StudentDelivery, task.Normal,
		kernel.MustLocationCode("LIB-DESK"), kernel.MustLocationCode("DORM-A"), stops, nil, now)
	require.NoError(t, err)
	return tk
}

func TestRouteSequencer_Sequence(t *testing.T) {
	seq := services.NewRouteSequencer()
	lib1 := newWaypoint(t, "LIB-1")
	lib2 := newWaypoint(t, "LIB-2")
	dorm := newWaypoint(t, "DORM-A")
	catalogue := []*waypoint.Waypoint{lib1, lib2, dorm}

	t.Run("should order by sequence regardless of insertion order", func(t *testing.T) {
		tk := taskWithStops(t,
			task.Stop{WaypointID: dorm.ID(), SequenceOrder: 30},
			task.Stop{WaypointID: lib1.ID(), SequenceOrder: 10},
			task.Stop{WaypointID: lib2.ID(), SequenceOrder: 20},
		)

		route, err := seq.Sequence(tk, catalogue)

		require.NoError(t, err)
		require.Len(t, route, 3)
		assert.Equal(t, "LIB-1", route[0].Code.String())
		assert.Equal(t, "LIB-2", route[1].Code.String())
		assert.Equal(t, "DORM-A", route.Final().Code.String())
	})

	t.Run("should route a task without stops to its destination", func(t *testing.T) {
		tk := taskWithStops(t)

		route, err := seq.Sequence(tk, nil)

		require.NoError(t, err)
		require.Len(t, route, 1)
		assert.Nil(t, route[0].WaypointID)
		assert.Equal(t, "DORM-A", route[0].Code.String())
	})

	t.Run("should still resolve retired waypoints", func(t *testing.T) {
		retired := newWaypoint(t, "OLD-1")
		require.NoError(t, retired.Retire())
		tk := taskWithStops(t, task.Stop{WaypointID: retired.ID(), SequenceOrder: 1})

		route, err := seq.Sequence(tk, []*waypoint.Waypoint{retired})

		require.NoError(t, err)
		assert.Equal(t, "OLD-1", route.Final().Code.String())
	})

	t.Run("should fail when a waypoint is missing", func(t *testing.T) {
		tk := taskWithStops(t, task.Stop{WaypointID: kernel.NewUUID(), SequenceOrder: 1})

		_, err := seq.Sequence(tk, catalogue)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestRouteSequencer_NextStop(t *testing.T) {
	seq := services.NewRouteSequencer()
	lib1 := newWaypoint(t, "LIB-1")
	dorm := newWaypoint(t, "DORM-A")
	tk := taskWithStops(t,
		task.Stop{WaypointID: lib1.ID(), SequenceOrder: 1},
		task.Stop{WaypointID: dorm.ID(), SequenceOrder: 2},
	)
	route, err := seq.Sequence(tk, []*waypoint.Waypoint{lib1, dorm})
	require.NoError(t, err)

	t.Run("empty completed code returns the first stop", func(t *testing.T) {
		next, done, err := seq.NextStop(route, "")

		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, "LIB-1", next.Code.String())
	})

	t.Run("intermediate stop returns the following one", func(t *testing.T) {
		next, done, err := seq.NextStop(route, "LIB-1")

		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, "DORM-A", next.Code.String())
	})

	t.Run("final stop returns done", func(t *testing.T) {
		_, done, err := seq.NextStop(route, "DORM-A")

		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("unknown code is rejected", func(t *testing.T) {
		_, _, err := seq.NextStop(route, "GYM")

		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("final stop detection", func(t *testing.T) {
		assert.True(t, seq.IsFinalStop(route, kernel.MustLocationCode("DORM-A")))
		assert.False(t, seq.IsFinalStop(route, kernel.MustLocationCode("LIB-1")))
	})
}
