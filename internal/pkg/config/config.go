package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // BOOKING_TIMEZONE must resolve on minimal images

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, secrets)
// - default: Values common across all environments (timezone, timeouts, batch sizes)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Booking  BookingConfig
	Outbox   OutboxConfig
	Notifier NotifierConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         string `envconfig:"DB_PORT" default:"5432"`
	User         string `envconfig:"DB_USER" required:"true"`
	Password     string `envconfig:"DB_PASSWORD" required:"true"`
	DBName       string `envconfig:"DB_NAME" required:"true"`
	SSLMode      string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone     string `envconfig:"DB_TIMEZONE" default:"America/Sao_Paulo"`
	MaxConns     int32  `envconfig:"DB_MAX_CONNS" default:"20"`
	TxMaxRetries int    `envconfig:"DB_TX_MAX_RETRIES" default:"3"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Location"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"America/Sao_Paulo"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"-10800"` // -3*60*60
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

// BookingConfig carries the admission and cancellation policy switches.
type BookingConfig struct {
	TimeZone          string        `envconfig:"BOOKING_TIMEZONE" default:"America/Sao_Paulo"`
	StaffCancelBypass bool          `envconfig:"BOOKING_STAFF_CANCEL_BYPASS" default:"true"`
	IdempotencyTTL    time.Duration `envconfig:"BOOKING_IDEMPOTENCY_TTL" default:"24h"`
}

type OutboxConfig struct {
	Enabled     bool          `envconfig:"OUTBOX_ENABLED" default:"true"`
	Interval    time.Duration `envconfig:"OUTBOX_INTERVAL" default:"5s"`
	BatchSize   int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"5"`
}

type NotifierConfig struct {
	Kind       string        `envconfig:"NOTIFIER_KIND" default:"log"`
	WebhookURL string        `envconfig:"NOTIFIER_WEBHOOK_URL"`
	Timeout    time.Duration `envconfig:"NOTIFIER_TIMEOUT" default:"5s"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"METRICS_PATH" default:"/metrics"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// Location resolves the condominium time zone used to decide "today".
func (c BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c Config) Validate() error {
	if _, err := c.Booking.Location(); err != nil {
		return err
	}
	switch c.Notifier.Kind {
	case "log":
	case "webhook":
		if c.Notifier.WebhookURL == "" {
			return fmt.Errorf("NOTIFIER_WEBHOOK_URL is required when NOTIFIER_KIND=webhook")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER_KIND %q", c.Notifier.Kind)
	}
	if c.DB.TxMaxRetries < 0 {
		return fmt.Errorf("DB_TX_MAX_RETRIES must not be negative")
	}
	return nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:         "localhost",
			Port:         "15433", // Test DB port
			User:         "test",
			Password:     "test",
			DBName:       "test_db",
			SSLMode:      "disable",
			TimeZone:     "UTC",
			MaxConns:     10,
			TxMaxRetries: 5,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: time.Hour,
		},
		Booking: BookingConfig{
			TimeZone:          "UTC",
			StaffCancelBypass: true,
			IdempotencyTTL:    time.Hour,
		},
		Outbox: OutboxConfig{
			Enabled:     false,
			Interval:    time.Second,
			BatchSize:   50,
			MaxAttempts: 3,
		},
		Notifier: NotifierConfig{
			Kind:    "log",
			Timeout: time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
