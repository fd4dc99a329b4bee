package http

import (
	"errors"
	"fmt"
	"maps"

	"luna/internal/core/application/usecases/queries"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/generated/servers"
	"luna/internal/pkg/errs"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func toID(id openapi_types.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func toOptionalID(id *openapi_types.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	k, err := toID(*id)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func fromID(id kernel.UUID) openapi_types.UUID {
	return id.Bytes()
}

func fromOptionalID(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	v := fromID(*id)
	return &v
}

func toMetadata(m *servers.Metadata) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(map[string]any(*m))
}

func fromMetadata(m map[string]any) *servers.Metadata {
	if len(m) == 0 {
		return nil
	}
	v := servers.Metadata(maps.Clone(m))
	return &v
}

func value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toStops(in *[]servers.StopInput) ([]task.Stop, error) {
	if in == nil {
		return nil, nil
	}

	stops := make([]task.Stop, 0, len(*in))
	var errList []error
	for i, s := range *in {
		id, err := toID(s.WaypointId)
		if err != nil {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("stops[%d]", i), err))
			continue
		}
		stops = append(stops, task.Stop{WaypointID: id, SequenceOrder: s.SequenceOrder})
	}
	return stops, errors.Join(errList...)
}

func fromTaskView(v queries.TaskView) servers.Task {
	return servers.Task{
		Id:            fromID(v.ID),
		RequestId:     fromOptionalID(v.RequestID),
		ReturnId:      fromOptionalID(v.ReturnID),
		Type:          servers.TaskType(v.Type),
		Priority:      servers.TaskPriority(v.Priority),
		Status:        servers.TaskStatus(v.Status),
		AssignedRobot: fromOptionalID(v.AssignedRobot),
		Source:        v.Source,
		Destination:   v.Destination,
		Metadata:      fromMetadata(v.Metadata),
		Attempt:       v.Attempt,
		RetryOf:       fromOptionalID(v.RetryOf),
		CreatedAt:     v.CreatedAt,
		StartedAt:     v.StartedAt,
		CompletedAt:   v.CompletedAt,
	}
}

func fromHistoryView(v queries.HistoryView) servers.TaskHistoryEntry {
	entry := servers.TaskHistoryEntry{
		NewStatus: servers.TaskStatus(v.NewStatus),
		Actor:     fromOptionalID(v.Actor),
		At:        v.At,
		Reason:    optionalString(v.Reason),
	}
	if v.OldStatus != nil {
		old := servers.TaskStatus(*v.OldStatus)
		entry.OldStatus = &old
	}
	return entry
}

func fromStopView(v queries.StopView) servers.RouteStop {
	return servers.RouteStop{
		WaypointId:    fromOptionalID(v.WaypointID),
		Name:          v.Name,
		Code:          v.Code,
		SequenceOrder: v.SequenceOrder,
	}
}

func fromRobotView(v queries.RobotView) servers.Robot {
	return servers.Robot{
		Id:            fromID(v.ID),
		Name:          v.Name,
		Status:        servers.RobotStatus(v.Status),
		Location:      v.Location,
		Battery:       v.Battery,
		LastHeartbeat: v.LastHeartbeat,
		SensorData:    fromMetadata(v.SensorData),
		Eligible:      v.Eligible,
	}
}

func fromStatusLogView(v queries.StatusLogView) servers.RobotStatusLog {
	return servers.RobotStatusLog{
		Status:     servers.RobotStatus(v.Status),
		Location:   v.Location,
		Battery:    v.Battery,
		SensorData: fromMetadata(v.SensorData),
		RecordedAt: v.RecordedAt,
	}
}

func fromWaypointView(v queries.WaypointView) servers.Waypoint {
	return servers.Waypoint{
		Id:        fromID(v.ID),
		Name:      v.Name,
		Code:      v.Code,
		X:         v.X,
		Y:         v.Y,
		Z:         v.Z,
		Metadata:  fromMetadata(v.Metadata),
		Active:    v.Active,
		CreatedAt: v.CreatedAt,
	}
}
