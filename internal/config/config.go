package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"engagement_db"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// JWT (issued by the identity service, verified here)
	JWTSecret string `env:"JWT_SECRET"`

	// Admin
	AdminUserIDs string `env:"ADMIN_USER_IDS"`

	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	RateLimit   int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	// Redis (optional, shared rate-limit storage)
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// RabbitMQ (optional, engagement events)
	RabbitMQURL    string        `env:"RABBITMQ_URL"`
	EventsExchange string        `env:"EVENTS_EXCHANGE" envDefault:"engagement_events"`
	EventsTimeout  time.Duration `env:"EVENTS_PUBLISH_TIMEOUT" envDefault:"2s"`

	// Object storage (optional, upload URLs)
	MinioEndpoint  string        `env:"MINIO_ENDPOINT"`
	MinioAccessKey string        `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string        `env:"MINIO_SECRET_KEY"`
	MinioBucket    string        `env:"MINIO_BUCKET" envDefault:"videos"`
	MinioRegion    string        `env:"MINIO_REGION" envDefault:"us-east-1"`
	MinioUseSSL    bool          `env:"MINIO_USE_SSL" envDefault:"false"`
	UploadURLTTL   time.Duration `env:"UPLOAD_URL_TTL" envDefault:"15m"`

	// Observability
	SentryDSN string `env:"SENTRY_DSN"`
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogRetain int    `env:"LOG_RETENTION_DAYS" envDefault:"30"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// AdminIDs returns the trimmed, non-empty entries of ADMIN_USER_IDS.
func (c *Config) AdminIDs() []string {
	if c.AdminUserIDs == "" {
		return nil
	}
	parts := strings.Split(c.AdminUserIDs, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
