package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/bcart01v/atlas-cinema-guru/pkg/config"
	"github.com/bcart01v/atlas-cinema-guru/pkg/database"
	"github.com/bcart01v/atlas-cinema-guru/pkg/middleware"
	"github.com/bcart01v/atlas-cinema-guru/pkg/tracing"
	"github.com/bcart01v/atlas-cinema-guru/pkg/validator"
)

const (
	ServiceName       = "cinema-guru"
	defaultJWTSecret  = "change-this-to-a-secure-secret"
	minJWTSecretBytes = 32
)

// Config holds all configuration for the cinema service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development" validate:"required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Library listing
	PageSize int `env:"PAGE_SIZE" envDefault:"6" validate:"min=1,max=100"`

	// PostgreSQL. DATABASE_URL wins over the individual fields.
	DatabaseURL        string        `env:"DATABASE_URL"`
	PostgresHost       string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort       int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser       string        `env:"POSTGRES_USER" envDefault:"cinema"`
	PostgresPass       string        `env:"POSTGRES_PASSWORD" envDefault:"cinema"`
	PostgresDB         string        `env:"POSTGRES_DB" envDefault:"cinema_guru"`
	PostgresSSL        string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns   int32         `env:"POSTGRES_MAX_CONNS" envDefault:"20" validate:"min=1"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
	RunMigrations      bool          `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Redis list cache. An empty REDIS_URL with REDIS_ENABLED=false
	// disables caching.
	RedisEnabled bool          `env:"REDIS_ENABLED" envDefault:"true"`
	RedisURL     string        `env:"REDIS_URL"`
	RedisHost    string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort    int           `env:"REDIS_PORT" envDefault:"6379"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"60s"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Identity tokens
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTIssuer string `env:"JWT_ISSUER"`

	// Toggle rate limiting per client IP
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5" validate:"gt=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10" validate:"min=1"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0" validate:"gte=0,lte=1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cinema config: %w", err)
	}
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate cinema config: %w", err)
	}

	// Outside development a real, strong signing secret is mandatory.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < minJWTSecretBytes {
			return nil, fmt.Errorf("JWT_SECRET must be at least %d characters long, got %d", minJWTSecretBytes, len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// Postgres returns the connection settings for database.NewPostgresPool.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.URL = c.DatabaseURL
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.PostgresMaxConns
	return pg
}

func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.URL = c.RedisURL
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	return rc
}

func (c *Config) CORS() middleware.CORSConfig {
	cc := middleware.DefaultCORSConfig()
	cc.AllowedOrigins = c.CORSAllowedOrigins
	cc.Environment = c.Environment
	return cc
}

func (c *Config) Tracing() tracing.Config {
	tc := tracing.DefaultConfig(ServiceName)
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTLPEndpoint
	tc.SampleRate = c.TracingSampleRate
	tc.Enabled = c.TracingEnabled
	return tc
}
