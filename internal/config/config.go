package config

import (
	"fmt"
	"strings"
	"time"

	"go-leave/internal/shared/connection"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	Postgres connection.PostgresConfig
	// AutoMigrate runs schema migration at startup.
	AutoMigrate bool

	RedisAddr   string
	KafkaBroker string
	KafkaGroup  string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SecureCookies   bool

	RBACModelPath string

	ExpirationThreshold time.Duration
	SweepInterval       time.Duration
	SweepConcurrency    int
	SweepBatchSize      int
	OutboxPollInterval  time.Duration

	LockWait time.Duration
	LockTTL  time.Duration

	// CreateRatePerDay bounds how many drafts one actor may open per day.
	CreateRatePerDay int

	TracingEnabled bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "go_leave")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("KAFKA_GROUP", "go-leave-audit")

	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("SECURE_COOKIES", false)

	v.SetDefault("LEAVE_EXPIRATION_THRESHOLD", 72*time.Hour)
	v.SetDefault("SWEEP_INTERVAL", time.Hour)
	v.SetDefault("SWEEP_CONCURRENCY", 4)
	v.SetDefault("SWEEP_BATCH_SIZE", 500)
	v.SetDefault("OUTBOX_POLL_INTERVAL", 3*time.Second)

	v.SetDefault("LOCK_WAIT", 2*time.Second)
	v.SetDefault("LOCK_TTL", 15*time.Second)

	v.SetDefault("CREATE_RATE_PER_DAY", 3)
	v.SetDefault("TRACING_ENABLED", false)
}

// Load reads configuration from the environment. Call godotenv.Load first
// to pick up a local .env file.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Postgres: connection.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			Port:     v.GetString("DB_PORT"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		AutoMigrate: v.GetBool("AUTO_MIGRATE"),

		RedisAddr:   v.GetString("REDIS_ADDR"),
		KafkaBroker: v.GetString("KAFKA_BROKER"),
		KafkaGroup:  v.GetString("KAFKA_GROUP"),

		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),
		SecureCookies:   v.GetBool("SECURE_COOKIES"),

		RBACModelPath: v.GetString("RBAC_MODEL_PATH"),

		ExpirationThreshold: v.GetDuration("LEAVE_EXPIRATION_THRESHOLD"),
		SweepInterval:       v.GetDuration("SWEEP_INTERVAL"),
		SweepConcurrency:    v.GetInt("SWEEP_CONCURRENCY"),
		SweepBatchSize:      v.GetInt("SWEEP_BATCH_SIZE"),
		OutboxPollInterval:  v.GetDuration("OUTBOX_POLL_INTERVAL"),

		LockWait: v.GetDuration("LOCK_WAIT"),
		LockTTL:  v.GetDuration("LOCK_TTL"),

		CreateRatePerDay: v.GetInt("CREATE_RATE_PER_DAY"),
		TracingEnabled:   v.GetBool("TRACING_ENABLED"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ExpirationThreshold <= 0 {
		return fmt.Errorf("LEAVE_EXPIRATION_THRESHOLD must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if c.SweepConcurrency < 1 {
		return fmt.Errorf("SWEEP_CONCURRENCY must be at least 1")
	}
	if c.CreateRatePerDay < 0 {
		return fmt.Errorf("CREATE_RATE_PER_DAY must not be negative")
	}
	if c.LockWait <= 0 || c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_WAIT and LOCK_TTL must be positive")
	}
	return nil
}

// RequireAPI checks the settings only the HTTP server needs.
func (c *Config) RequireAPI() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// RequireKafka checks the settings the outbox publisher and consumer need.
func (c *Config) RequireKafka() error {
	if c.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
