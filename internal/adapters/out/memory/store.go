// Package memory provides an in-process implementation of the engine's
// repositories and unit of work. It backs STORAGE_DRIVER=memory and the
// engine scenario tests.
//
// A transaction takes the store's write lock at Begin and works on a copy
// of the state; Commit swaps the copy in, Rollback discards it. Calls made
// outside a transaction are applied atomically on their own.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/domain/model/waypoint"
	"luna/internal/core/ports"
)

// ErrNoTransaction is returned by Commit and Rollback without a prior Begin.
var ErrNoTransaction = errors.New("no active transaction")

type state struct {
	tasks     map[kernel.UUID]task.Snapshot
	history   map[kernel.UUID][]*task.History
	robots    map[kernel.UUID]robot.Snapshot
	logs      map[kernel.UUID][]robot.StatusLog
	waypoints map[kernel.UUID]waypoint.Snapshot
}

func newState() *state {
	return &state{
		tasks:     make(map[kernel.UUID]task.Snapshot),
		history:   make(map[kernel.UUID][]*task.History),
		robots:    make(map[kernel.UUID]robot.Snapshot),
		logs:      make(map[kernel.UUID][]robot.StatusLog),
		waypoints: make(map[kernel.UUID]waypoint.Snapshot),
	}
}

// clone copies the maps. Stored values are never mutated in place, and
// slices are clipped before append, so a shallow copy isolates a transaction.
func (s *state) clone() *state {
	return &state{
		tasks:     maps.Clone(s.tasks),
		history:   maps.Clone(s.history),
		robots:    maps.Clone(s.robots),
		logs:      maps.Clone(s.logs),
		waypoints: maps.Clone(s.waypoints),
	}
}

// Store holds the committed state shared by every unit of work.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// UnitOfWorkFactory creates units of work over a single Store.
type UnitOfWorkFactory struct {
	store *Store
}

// NewUnitOfWorkFactory creates a factory bound to store.
func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

// Create returns a unit of work with no active transaction.
func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork implements ports.UnitOfWork. It is not safe for concurrent use;
// create one per operation.
type UnitOfWork struct {
	store *Store
	tx    *state
}

// Begin locks the store and starts working on a private copy. Calling Begin
// twice is a no-op.
func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.tx != nil {
		return nil
	}
	u.store.mu.Lock()
	u.tx = u.store.state.clone()
	return nil
}

// Commit publishes the transaction's state and releases the lock.
func (u *UnitOfWork) Commit(_ context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	u.store.state = u.tx
	u.tx = nil
	u.store.mu.Unlock()
	return nil
}

// Rollback discards the transaction's state and releases the lock.
func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	u.tx = nil
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) TaskRepository() ports.TaskRepository {
	return &TaskRepository{uow: u}
}

func (u *UnitOfWork) RobotRepository() ports.RobotRepository {
	return &RobotRepository{uow: u}
}

func (u *UnitOfWork) WaypointRepository() ports.WaypointRepository {
	return &WaypointRepository{uow: u}
}

func (u *UnitOfWork) read(fn func(s *state) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return fn(u.store.state)
}

func (u *UnitOfWork) write(fn func(s *state) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	next := u.store.state.clone()
	if err := fn(next); err != nil {
		return err
	}
	u.store.state = next
	return nil
}
