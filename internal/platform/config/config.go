package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr                  string
	Environment           string
	DatabaseURL           string
	DBMaxConns            int32
	MigrationsDir         string
	RunMigrations         bool
	RunSeed               bool
	JWTSecret             string
	CORSAllowedOrigins    []string
	LogLevel              string
	LogFormat             string
	RedisAddr             string
	RedisDB               int
	StatsCacheTTL         time.Duration
	NotificationTemplates string
	EmailEnabled          bool
	EmailFrom             string
	SMTPHost              string
	SMTPPort              int
	SMTPUser              string
	SMTPPassword          string
	SMTPUseTLS            bool
	MaxBodyBytes          int64
	MetricsEnabled        bool
	RateLimitPerMinute    int
}

// Load reads configuration from the environment and, when present, a
// config.yaml in the working directory. Environment variables win.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("RUN_SEED", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STATS_CACHE_TTL", 5*time.Minute)
	v.SetDefault("EMAIL_ENABLED", false)
	v.SetDefault("EMAIL_FROM", "no-reply@example.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USE_TLS", true)
	v.SetDefault("MAX_BODY_BYTES", 1048576)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
	}

	return Config{
		Addr:                  v.GetString("APP_ADDR"),
		Environment:           v.GetString("APP_ENV"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		DBMaxConns:            v.GetInt32("DB_MAX_CONNS"),
		MigrationsDir:         v.GetString("MIGRATIONS_DIR"),
		RunMigrations:         v.GetBool("RUN_MIGRATIONS"),
		RunSeed:               v.GetBool("RUN_SEED"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisDB:               v.GetInt("REDIS_DB"),
		StatsCacheTTL:         v.GetDuration("STATS_CACHE_TTL"),
		NotificationTemplates: v.GetString("NOTIFICATION_TEMPLATES"),
		EmailEnabled:          v.GetBool("EMAIL_ENABLED"),
		EmailFrom:             v.GetString("EMAIL_FROM"),
		SMTPHost:              v.GetString("SMTP_HOST"),
		SMTPPort:              v.GetInt("SMTP_PORT"),
		SMTPUser:              v.GetString("SMTP_USER"),
		SMTPPassword:          v.GetString("SMTP_PASSWORD"),
		SMTPUseTLS:            v.GetBool("SMTP_USE_TLS"),
		MaxBodyBytes:          v.GetInt64("MAX_BODY_BYTES"),
		MetricsEnabled:        v.GetBool("METRICS_ENABLED"),
		RateLimitPerMinute:    v.GetInt("RATE_LIMIT_PER_MINUTE"),
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.StatsCacheTTL < 0 {
		return fmt.Errorf("STATS_CACHE_TTL must not be negative")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}
