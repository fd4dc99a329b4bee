// Package mqttclient wraps the paho client with blocking publish and
// subscribe calls and zap logging of connection events.
package mqttclient

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	connectTimeout    = 10 * time.Second
	operationTimeout  = 5 * time.Second
	disconnectQuiesce = 250
)

type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// MessageHandler processes one message. Errors are logged by the client.
type MessageHandler = func(topic string, payload []byte) error

type Client struct {
	client mqtt.Client
	logger *zap.Logger
}

// Connect dials the broker. Subscriptions made through the returned client
// are restored after an automatic reconnect.
func Connect(cfg Config, logger *zap.Logger) (*Client, error) {
	logger = logger.With(zap.String("component", "mqtt"), zap.String("broker", cfg.Broker))

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(false)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("connection lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("connected")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to MQTT broker %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	return &Client{client: client, logger: logger}, nil
}

func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	token := c.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.logger.Warn("message rejected", zap.String("topic", msg.Topic()), zap.Error(err))
		}
	})
	if err := wait(token); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	return nil
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if err := wait(c.client.Publish(topic, qos, retained, payload)); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (c *Client) Disconnect() {
	c.client.Disconnect(disconnectQuiesce)
}

func wait(token mqtt.Token) error {
	if !token.WaitTimeout(operationTimeout) {
		return fmt.Errorf("timed out after %s", operationTimeout)
	}
	return token.Error()
}
