package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"luna/internal/pkg/errs"
	"luna/internal/pkg/policy"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	defaultHTTPPort           = "8080"
	defaultStreamPrefix       = "luna"
	defaultMQTTClientID       = "luna-engine"
	defaultReturnDropLocation = "LIB-RETURNS"
)

type Config struct {
	HTTPPort      string
	StorageDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisStreamPrefix string

	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	LogLevel  string
	LogFormat string

	// ReturnDropLocation is where return pickups are delivered.
	ReturnDropLocation string

	// PolicyFile optionally overrides Policy and is watched for changes.
	PolicyFile string
	Policy     policy.Policy
}

// LoadConfig reads the configuration through getenv. Unset keys take their
// defaults; malformed values are reported together.
func LoadConfig(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		HTTPPort:           get("HTTP_PORT", defaultHTTPPort),
		StorageDriver:      strings.ToLower(get("STORAGE_DRIVER", StoragePostgres)),
		DBHost:             get("DB_HOST", "localhost"),
		DBPort:             get("DB_PORT", "5432"),
		DBUser:             get("DB_USER", ""),
		DBPassword:         get("DB_PASSWORD", ""),
		DBName:             get("DB_NAME", ""),
		DBSslMode:          get("DB_SSLMODE", "disable"),
		RedisAddr:          get("REDIS_ADDR", ""),
		RedisPassword:      get("REDIS_PASSWORD", ""),
		RedisStreamPrefix:  get("REDIS_STREAM_PREFIX", defaultStreamPrefix),
		MQTTBroker:         get("MQTT_BROKER", ""),
		MQTTClientID:       get("MQTT_CLIENT_ID", defaultMQTTClientID),
		MQTTUsername:       get("MQTT_USERNAME", ""),
		MQTTPassword:       get("MQTT_PASSWORD", ""),
		LogLevel:           get("LOG_LEVEL", "info"),
		LogFormat:          get("LOG_FORMAT", "json"),
		ReturnDropLocation: get("RETURN_DROP_LOCATION", defaultReturnDropLocation),
		PolicyFile:         get("POLICY_FILE", ""),
	}

	p := policy.Default()
	var errList []error
	parseInt := func(key string, dst *int) {
		if v := get(key, ""); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errList = append(errList, errs.NewValueIsInvalidErrorWithCause(key, err))
				return
			}
			*dst = n
		}
	}
	parseDuration := func(key string, dst *time.Duration) {
		if v := get(key, ""); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errList = append(errList, errs.NewValueIsInvalidErrorWithCause(key, err))
				return
			}
			*dst = d
		}
	}

	parseInt("REDIS_DB", &cfg.RedisDB)
	parseInt("MAX_RETRIES", &p.MaxRetries)
	parseInt("MISSED_HEARTBEATS", &p.MissedHeartbeats)
	parseInt("DISPATCH_BATCH_SIZE", &p.BatchSize)
	parseDuration("HEARTBEAT_STALENESS", &p.StalenessWindow)
	parseDuration("HEARTBEAT_INTERVAL", &p.HeartbeatInterval)
	parseDuration("DISPATCH_INTERVAL", &p.DispatchInterval)
	if v := get("MIN_BATTERY", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause("MIN_BATTERY", err))
		} else {
			p.MinBattery = f
		}
	}
	cfg.Policy = p

	if err := errors.Join(errList...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	var errList []error
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.DBUser == "" {
			errList = append(errList, errs.NewValueIsRequiredError("DB_USER"))
		}
		if c.DBName == "" {
			errList = append(errList, errs.NewValueIsRequiredError("DB_NAME"))
		}
	default:
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"STORAGE_DRIVER", fmt.Errorf("want %s or %s, got %q", StoragePostgres, StorageMemory, c.StorageDriver)))
	}
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("HTTP_PORT", err))
	}
	if err := c.Policy.Validate(); err != nil {
		errList = append(errList, err)
	}
	return errors.Join(errList...)
}

// DSN is the libpq connection string for the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
