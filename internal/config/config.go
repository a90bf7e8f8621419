// Package config loads application configuration from environment
// variables. A .env file, when present, is read first by the command
// layer.
package config

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	DBUser         string `envconfig:"DB_USER" required:"true"`
	DBPass         string `envconfig:"DB_PASS"`
	DBHost         string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort         string `envconfig:"DB_PORT" default:"3306"`
	DBName         string `envconfig:"DB_NAME" required:"true"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`

	// TxTimeout bounds one booking workflow from begin to commit.
	TxTimeout time.Duration `envconfig:"TX_TIMEOUT" default:"10s"`
	// TxIsolation is one of READ COMMITTED, REPEATABLE READ, SERIALIZABLE
	// or DEFAULT. Underscores are accepted in place of spaces.
	TxIsolation string `envconfig:"TX_ISOLATION" default:"REPEATABLE READ"`

	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	AccessTTLMin int    `envconfig:"ACCESS_TOKEN_TTL_MIN" default:"60"`
	BcryptCost   int    `envconfig:"BCRYPT_COST" default:"10"`

	Redis RedisConfig `envconfig:"REDIS"`
	// AvailabilityCacheTTL is how long a cached availability answer lives.
	// Zero disables the cache.
	AvailabilityCacheTTL time.Duration `envconfig:"AVAILABILITY_CACHE_TTL" default:"30s"`

	// RabbitURL enables event publishing when set.
	RabbitURL      string `envconfig:"RABBITMQ_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"rims.bookings"`
	EventsQueue    string `envconfig:"EVENTS_QUEUE" default:"rims.booking-log"`
	BookingLogPath string `envconfig:"BOOKING_LOG_PATH" default:"logs/booking.log"`

	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	// envconfig accepts a required variable that is set but empty.
	if strings.TrimSpace(c.JWTSecret) == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET must not be empty")
	}
	if _, err := c.Isolation(); err != nil {
		return Config{}, err
	}
	c.RateLimit.normalize()
	return c, nil
}

// Isolation maps TxIsolation onto a database/sql isolation level.
func (c Config) Isolation() (sql.IsolationLevel, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(c.TxIsolation), "_", " ")) {
	case "", "DEFAULT":
		return sql.LevelDefault, nil
	case "READ COMMITTED":
		return sql.LevelReadCommitted, nil
	case "REPEATABLE READ":
		return sql.LevelRepeatableRead, nil
	case "SERIALIZABLE":
		return sql.LevelSerializable, nil
	}
	return 0, fmt.Errorf("config: unsupported TX_ISOLATION %q", c.TxIsolation)
}

// DSN builds the MySQL data source name. parseTime=true maps DATE and
// DATETIME to time.Time; loc=UTC keeps times consistent.
func (c Config) DSN() string {
	auth := c.DBUser
	if c.DBPass != "" {
		auth = fmt.Sprintf("%s:%s", c.DBUser, c.DBPass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, c.DBHost, c.DBPort, c.DBName)
}
