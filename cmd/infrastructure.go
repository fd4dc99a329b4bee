package cmd

import (
	"context"
	"errors"
	"fmt"

	"luna/internal/adapters/out/memory"
	"luna/internal/adapters/out/notify"
	"luna/internal/adapters/out/postgres"
	"luna/internal/core/ports"
	"luna/internal/pkg/mqttclient"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Storage is the persistence backend selected by STORAGE_DRIVER.
type Storage struct {
	UoWFactory ports.UnitOfWorkFactory
	// DB is nil for the in-memory backend.
	DB *gorm.DB
}

// OpenStorage connects to the configured backend. The Postgres schema is
// migrated on startup.
func OpenStorage(cfg Config, logger *zap.Logger) (Storage, error) {
	if cfg.StorageDriver == StorageMemory {
		logger.Warn("using in-memory storage, state is lost on restart")
		return Storage{UoWFactory: memory.NewUnitOfWorkFactory(memory.NewStore())}, nil
	}

	db, err := gorm.Open(postgresdriver.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return Storage{}, fmt.Errorf("connect to postgres: %w", err)
	}
	if err = postgres.Migrate(db); err != nil {
		return Storage{}, fmt.Errorf("migrate schema: %w", err)
	}

	return Storage{
		UoWFactory: postgres.NewGormUnitOfWorkFactory(db),
		DB:         db,
	}, nil
}

func (s Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Notifiers delivers engine events to every configured sink. The log sink is
// always present; Redis and MQTT are added when their address is set.
type Notifiers struct {
	Notifier ports.Notifier
	// MQTT is nil when MQTT_BROKER is unset. The heartbeat subscriber
	// shares this connection.
	MQTT *mqttclient.Client

	closers []func() error
}

func OpenNotifiers(ctx context.Context, cfg Config, logger *zap.Logger) (*Notifiers, error) {
	n := &Notifiers{}
	sinks := []notify.Sink{{Name: "log", Notifier: notify.NewLogNotifier(logger)}}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis %s: %w", cfg.RedisAddr, err)
		}
		n.closers = append(n.closers, client.Close)
		sinks = append(sinks, notify.Sink{
			Name:     "redis",
			Notifier: notify.NewRedisStreamNotifier(client, cfg.RedisStreamPrefix),
		})
	}

	if cfg.MQTTBroker != "" {
		client, err := mqttclient.Connect(mqttclient.Config{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		}, logger)
		if err != nil {
			_ = n.Close()
			return nil, err
		}
		n.MQTT = client
		n.closers = append(n.closers, func() error {
			client.Disconnect()
			return nil
		})
		sinks = append(sinks, notify.Sink{Name: "mqtt", Notifier: notify.NewMQTTNotifier(client)})
	}

	n.Notifier = notify.NewFanout(logger, sinks...)
	return n, nil
}

// Close releases every sink connection.
func (n *Notifiers) Close() error {
	var errList []error
	for i := len(n.closers) - 1; i >= 0; i-- {
		errList = append(errList, n.closers[i]())
	}
	n.closers = nil
	return errors.Join(errList...)
}
