package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"luna/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	taskEventsStream   = "task-events"
	systemAlertsStream = "system-alerts"

	// defaultStreamMaxLen caps each stream; trimming is approximate.
	defaultStreamMaxLen = 100_000
)

// RedisStreamNotifier appends events to Redis streams
// <prefix>:task-events and <prefix>:system-alerts. Each entry carries the
// message type, the subject ids and the JSON payload under "data".
type RedisStreamNotifier struct {
	client *redis.Client
	prefix string
	maxLen int64
}

func NewRedisStreamNotifier(client *redis.Client, prefix string) *RedisStreamNotifier {
	if prefix == "" {
		prefix = "luna"
	}
	return &RedisStreamNotifier{
		client: client,
		prefix: prefix,
		maxLen: defaultStreamMaxLen,
	}
}

// TaskEventsStream returns the stream key status changes are written to.
func (n *RedisStreamNotifier) TaskEventsStream() string {
	return n.prefix + ":" + taskEventsStream
}

// SystemAlertsStream returns the stream key alerts are written to.
func (n *RedisStreamNotifier) SystemAlertsStream() string {
	return n.prefix + ":" + systemAlertsStream
}

func (n *RedisStreamNotifier) NotifyStatusChange(ctx context.Context, event ports.StatusChangeEvent) error {
	m := newStatusChangeMessage(event)
	values := map[string]any{
		"type":       m.Type,
		"task_id":    m.TaskID,
		"new_status": m.NewStatus,
	}
	return n.publish(ctx, n.TaskEventsStream(), values, m)
}

func (n *RedisStreamNotifier) RaiseAlert(ctx context.Context, alert ports.SystemAlert) error {
	m := newAlertMessage(alert)
	values := map[string]any{
		"type": m.Type,
		"kind": m.Kind,
	}
	return n.publish(ctx, n.SystemAlertsStream(), values, m)
}

func (n *RedisStreamNotifier) publish(ctx context.Context, stream string, values map[string]any, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	values["data"] = string(data)

	if err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: n.maxLen,
		Approx: true,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", stream, err)
	}
	return nil
}
