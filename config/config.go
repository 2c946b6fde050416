package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret    string `env:"JWT_SECRET,required" validate:"required,min=32"`
	ResendAPIKey string `env:"RESEND_API_KEY"       validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"          envDefault:"noreply@gradgear.com"`

	// local keeps blobs on disk under StorageDir; minio keeps them in a bucket.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local" validate:"oneof=local minio"`
	StorageDir     string `env:"STORAGE_DIR"     envDefault:"uploads" validate:"required_if=StorageBackend local"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT"   validate:"required_if=StorageBackend minio"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" validate:"required_if=StorageBackend minio"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" validate:"required_if=StorageBackend minio"`
	MinioBucket    string `env:"MINIO_BUCKET"     envDefault:"marketplace"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"    envDefault:"false"`

	SignupEmailDomain        string `env:"SIGNUP_EMAIL_DOMAIN"         envDefault:"@am.students.amrita.edu" validate:"required,startswith=@"`
	SignupRequireVerifiedOTP bool   `env:"SIGNUP_REQUIRE_VERIFIED_OTP" envDefault:"false"`

	OTPReaperSchedule string        `env:"OTP_REAPER_SCHEDULE" envDefault:"@every 1h" validate:"required"`
	OTPRetention      time.Duration `env:"OTP_RETENTION"       envDefault:"24h" validate:"gt=0"`
}

// Load reads .env.local and .env when present (existing variables win),
// then parses and validates the environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
