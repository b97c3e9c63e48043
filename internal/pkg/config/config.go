package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), business rules
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Voucher VoucherConfig
	Booking BookingConfig
	Sweeper SweeperConfig
	Events  EventsConfig
}

type ServerConfig struct {
	Port           string        `envconfig:"PORT" required:"true"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type StoreConfig struct {
	Driver      string `envconfig:"STORE_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	// Experience IDs registered as active when running on the memory driver.
	SeedExperiences []string `envconfig:"MEMORY_SEED_EXPERIENCES"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`

	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	// Bounds how long a redeem/cancel/reschedule waits for a row lock held by a racing call.
	LockTimeout time.Duration `envconfig:"DB_LOCK_TIMEOUT" default:"3s"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Retry-After"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true"`
	// Clock skew tolerated against the identity provider on exp/nbf/iat.
	Leeway time.Duration `envconfig:"JWT_LEEWAY" default:"30s"`
}

type VoucherConfig struct {
	ValidityMonths  int           `envconfig:"VOUCHER_VALIDITY_MONTHS" default:"12"`
	CodePrefix      string        `envconfig:"VOUCHER_CODE_PREFIX" default:"EXP"`
	CodeMaxAttempts int           `envconfig:"VOUCHER_CODE_MAX_ATTEMPTS" default:"5"`
	IdempotencyTTL  time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

type BookingConfig struct {
	ModificationWindow time.Duration `envconfig:"BOOKING_MODIFICATION_WINDOW" default:"48h"`
	MaxReschedules     int           `envconfig:"BOOKING_MAX_RESCHEDULES" default:"1"`
}

type SweeperConfig struct {
	Enabled  bool          `envconfig:"SWEEPER_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"SWEEPER_INTERVAL" default:"24h"`
}

type EventsConfig struct {
	// Empty URL keeps events in the outbox log-only (no broker).
	NATSURL       string        `envconfig:"NATS_URL"`
	SubjectPrefix string        `envconfig:"EVENTS_SUBJECT_PREFIX" default:"vouchers"`
	PollInterval  time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"2s"`
	BatchSize     int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts   int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"5"`

	// Upper bound for a single publish, so a stalled broker cannot eat the
	// time needed to record the failed attempt.
	PublishTimeout time.Duration `envconfig:"OUTBOX_PUBLISH_TIMEOUT" default:"5s"`
}

// Generated codes look like EXP-2025-AB12CD34, so the prefix is letters only.
var codePrefixPattern = regexp.MustCompile(`^[A-Za-z]+$`)

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.DB.User == "" || c.DB.DBName == "" {
			return fmt.Errorf("DB_USER and DB_NAME are required for STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Voucher.ValidityMonths < 1 {
		return fmt.Errorf("VOUCHER_VALIDITY_MONTHS must be positive, got %d", c.Voucher.ValidityMonths)
	}
	if c.Voucher.CodeMaxAttempts < 1 {
		return fmt.Errorf("VOUCHER_CODE_MAX_ATTEMPTS must be positive, got %d", c.Voucher.CodeMaxAttempts)
	}
	if !codePrefixPattern.MatchString(c.Voucher.CodePrefix) {
		return fmt.Errorf("VOUCHER_CODE_PREFIX must be letters only, got %q", c.Voucher.CodePrefix)
	}
	if c.Booking.MaxReschedules < 0 || c.Booking.MaxReschedules > 1 {
		return fmt.Errorf("BOOKING_MAX_RESCHEDULES must be 0 or 1, got %d", c.Booking.MaxReschedules)
	}
	if c.Sweeper.Enabled && c.Sweeper.Interval <= 0 {
		return fmt.Errorf("SWEEPER_INTERVAL must be positive, got %s", c.Sweeper.Interval)
	}
	if c.Events.PollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive, got %s", c.Events.PollInterval)
	}
	if c.Events.PublishTimeout <= 0 {
		return fmt.Errorf("OUTBOX_PUBLISH_TIMEOUT must be positive, got %s", c.Events.PublishTimeout)
	}
	if c.Events.BatchSize < 1 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.Events.BatchSize)
	}
	if c.Events.MaxAttempts < 1 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be positive, got %d", c.Events.MaxAttempts)
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8889", // Test port
			RequestTimeout: 5 * time.Second,
		},
		Store: StoreConfig{
			Driver: StoreDriverPostgres,
		},
		DB: DBConfig{
			Host:            "localhost",
			Port:            "15433", // Test DB port
			User:            "test",
			Password:        "test",
			DBName:          "test_db",
			SSLMode:         "disable",
			TimeZone:        "UTC",
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			LockTimeout:     3 * time.Second,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Voucher: VoucherConfig{
			ValidityMonths:  12,
			CodePrefix:      "EXP",
			CodeMaxAttempts: 5,
			IdempotencyTTL:  24 * time.Hour,
		},
		Booking: BookingConfig{
			ModificationWindow: 48 * time.Hour,
			MaxReschedules:     1,
		},
		Sweeper: SweeperConfig{
			Enabled:  false,
			Interval: 24 * time.Hour,
		},
		Events: EventsConfig{
			SubjectPrefix:  "vouchers",
			PollInterval:   time.Second,
			BatchSize:      50,
			MaxAttempts:    5,
			PublishTimeout: time.Second,
		},
	}
}
