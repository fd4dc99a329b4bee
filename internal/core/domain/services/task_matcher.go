package services

import (
	"cmp"
	"slices"

	"luna/internal/core/domain/model/robot"
	"luna/internal/core/domain/model/task"
)

// Match pairs a waiting task with the robot chosen for it.
type Match struct {
	Task  *task.Task
	Robot *robot.Robot
}

// Plan is the outcome of one matching pass. Unmatched tasks keep dispatch order.
type Plan struct {
	Matches   []Match
	Unmatched []*task.Task
}

// TaskMatcher pairs waiting tasks with eligible robots. It plans only; the
// caller applies each match with conditional writes.
//
// Tasks are served in dispatch order (priority desc, created asc, id asc).
// Each task takes the first free robot whose location equals the task source,
// otherwise the first free robot in name order. Each robot is used once.
type TaskMatcher struct{}

// NewTaskMatcher creates a TaskMatcher.
func NewTaskMatcher() TaskMatcher {
	return TaskMatcher{}
}

// Match builds a plan. Invalid tasks or robots are skipped.
func (m TaskMatcher) Match(tasks []*task.Task, robots []*robot.Robot) Plan {
	ordered := slices.Clone(tasks)
	SortForDispatch(ordered)

	pool := make([]*robot.Robot, 0, len(robots))
	for _, r := range robots {
		if r.Validate() == nil {
			pool = append(pool, r)
		}
	}
	slices.SortStableFunc(pool, func(a, b *robot.Robot) int {
		return cmp.Compare(a.Name(), b.Name())
	})

	var plan Plan
	for _, t := range ordered {
		if t.Validate() != nil || !t.Status().IsWaiting() {
			continue
		}

		idx := m.pick(t, pool)
		if idx < 0 {
			plan.Unmatched = append(plan.Unmatched, t)
			continue
		}

		plan.Matches = append(plan.Matches, Match{Task: t, Robot: pool[idx]})
		pool = slices.Delete(pool, idx, idx+1)
	}

	return plan
}

func (m TaskMatcher) pick(t *task.Task, pool []*robot.Robot) int {
	if len(pool) == 0 {
		return -1
	}
	for i, r := range pool {
		if r.IsAt(t.Source()) {
			return i
		}
	}
	return 0
}

// SortForDispatch orders tasks by priority desc, creation time asc, id asc.
func SortForDispatch(tasks []*task.Task) {
	slices.SortStableFunc(tasks, CompareForDispatch)
}

// CompareForDispatch is the dispatch ordering used by SortForDispatch and by
// storage adapters that must return the same order.
func CompareForDispatch(a, b *task.Task) int {
	if c := cmp.Compare(b.Priority(), a.Priority()); c != 0 {
		return c
	}
	if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
		return c
	}
	return a.ID().Compare(b.ID())
}
