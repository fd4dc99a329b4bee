// Package queries contains read operations for retrieving engine state.
// Queries read through the same repository ports as the commands, outside a
// transaction, and return flat read models for the HTTP adapter.
package queries

import (
	"luna/internal/core/ports"
)

type (
	TaskReader interface {
		TaskRepository() ports.TaskRepository
	}

	RobotReader interface {
		RobotRepository() ports.RobotRepository
	}

	WaypointReader interface {
		WaypointRepository() ports.WaypointRepository
	}

	// Reader exposes every repository for read-only use.
	Reader interface {
		TaskReader
		RobotReader
		WaypointReader
	}

	ReaderFactory interface {
		Create() Reader
	}
)
