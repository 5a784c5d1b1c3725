package config // package config loads application configuration from environment variables

import (
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/ticket-reservation/internal/database"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; every variable has a default so the service
// starts with an empty environment.
type Config struct {
	Env             string          // application environment (e.g. "dev", "prod")
	Port            string          // HTTP port to listen on
	LogLevel        string          // logrus level name
	AMQPURL         string          // RabbitMQ URL; empty disables booking events
	ConsumerEnabled bool            // run the booking event consumer in-process
	AuditLogDir     string          // directory of the consumer's booking.log
	DB              database.Config // MySQL audit database; empty host disables it
	ShutdownTimeout time.Duration   // grace period for in-flight requests
}

// Load reads a .env file when present and then builds the Config from the
// environment.  A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the Config from the current environment only.
func FromEnv() Config {
	amqpURL := envStr("RABBITMQ_URL", "")
	if amqpURL == "" {
		amqpURL = envStr("AMQP_URL", "")
	}
	return Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            envStr("APP_PORT", "8080"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		AMQPURL:         amqpURL,
		ConsumerEnabled: envBool("EVENTS_CONSUMER_ENABLED", false),
		AuditLogDir:     envStr("AUDIT_LOG_DIR", "logs"),
		DB: database.Config{
			User: envStr("DB_USER", "root"),
			Pass: envStr("DB_PASS", ""),
			Host: envStr("DB_HOST", ""),
			Port: envStr("DB_PORT", "3306"),
			Name: envStr("DB_NAME", "ticket_reservation"),
		},
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// EventsEnabled reports whether a broker is configured.
func (c Config) EventsEnabled() bool { return c.AMQPURL != "" }

// AuditDBEnabled reports whether the MySQL audit sink should be used.
func (c Config) AuditDBEnabled() bool { return c.DB.Host != "" }
