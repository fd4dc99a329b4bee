// Package mqtt ingests robot heartbeats published on luna/robots/{id}/heartbeat.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"

	"go.uber.org/zap"
)

const (
	// HeartbeatTopic matches every robot's heartbeat topic.
	HeartbeatTopic = "luna/robots/+/heartbeat"

	handleTimeout = 10 * time.Second
)

// HeartbeatPayload is the JSON body a robot publishes. The robot id comes
// from the topic.
type HeartbeatPayload struct {
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	Location   *string        `json:"location"`
	Battery    *float64       `json:"battery"`
	SensorData map[string]any `json:"sensor_data"`
}

type HeartbeatHandler interface {
	Handle(ctx context.Context, cmd commands.ReportHeartbeatCommand) (commands.HeartbeatResult, error)
}

// Subscriber is the interface of the MQTT client the adapter needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
}

type HeartbeatSubscriber struct {
	handler HeartbeatHandler
	logger  *zap.Logger
}

func NewHeartbeatSubscriber(handler HeartbeatHandler, logger *zap.Logger) *HeartbeatSubscriber {
	return &HeartbeatSubscriber{
		handler: handler,
		logger:  logger.With(zap.String("component", "heartbeat-subscriber")),
	}
}

// Start subscribes to HeartbeatTopic with QoS 1.
func (s *HeartbeatSubscriber) Start(sub Subscriber) error {
	return sub.Subscribe(HeartbeatTopic, 1, func(topic string, payload []byte) error {
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()
		return s.HandleMessage(ctx, topic, payload)
	})
}

// HandleMessage decodes one heartbeat and reports it.
func (s *HeartbeatSubscriber) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	robotID, err := robotIDFromTopic(topic)
	if err != nil {
		return err
	}

	var p HeartbeatPayload
	if err = json.Unmarshal(payload, &p); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("heartbeat payload", err)
	}

	cmd, err := commands.NewReportHeartbeatCommand(robotID, p.Name, p.Status, p.Location, p.Battery, p.SensorData)
	if err != nil {
		return err
	}

	result, err := s.handler.Handle(ctx, cmd)
	if err != nil {
		return fmt.Errorf("report heartbeat of %s: %w", robotID, err)
	}

	s.logger.Debug("heartbeat ingested",
		zap.String("robot_id", robotID.String()),
		zap.String("robot_status", result.RobotStatus.String()),
		zap.Bool("registered", result.Registered))
	return nil
}

func robotIDFromTopic(topic string) (kernel.UUID, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "luna" || parts[1] != "robots" || parts[3] != "heartbeat" {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("topic", fmt.Errorf("unexpected topic %q", topic))
	}
	return kernel.UUIDFromString(parts[2])
}
