package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"luna/internal/core/ports"
)

const (
	robotTasksTopic = "luna/robots/%s/tasks"
	alertsTopic     = "luna/alerts"
)

// Publisher sends one MQTT message.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier pushes task status changes to the robot that holds the task,
// on luna/robots/{robot_id}/tasks, and alerts to luna/alerts. Changes with no
// robot involved are not published.
type MQTTNotifier struct {
	publisher Publisher
	qos       byte
}

func NewMQTTNotifier(publisher Publisher) *MQTTNotifier {
	return &MQTTNotifier{publisher: publisher, qos: 1}
}

func (n *MQTTNotifier) NotifyStatusChange(_ context.Context, event ports.StatusChangeEvent) error {
	if event.RobotID == nil {
		return nil
	}
	payload, err := json.Marshal(newStatusChangeMessage(event))
	if err != nil {
		return err
	}
	return n.publisher.Publish(fmt.Sprintf(robotTasksTopic, event.RobotID.String()), n.qos, false, payload)
}

func (n *MQTTNotifier) RaiseAlert(_ context.Context, alert ports.SystemAlert) error {
	payload, err := json.Marshal(newAlertMessage(alert))
	if err != nil {
		return err
	}
	return n.publisher.Publish(alertsTopic, n.qos, false, payload)
}
