package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const insecureJWTSecret = "change-me-adwall-secret"

// Config holds all configuration for the service.
type Config struct {
	Env            string `mapstructure:"ENV"`
	ServiceName    string `mapstructure:"SERVICE_NAME"`
	HTTPPort       string `mapstructure:"HTTP_PORT"`
	MetricsPort    string `mapstructure:"METRICS_PORT"`
	GRPCHealthPort string `mapstructure:"GRPC_HEALTH_PORT"`

	MongoURI      string        `mapstructure:"MONGO_URI"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`
	MongoTimeout  time.Duration `mapstructure:"MONGO_TIMEOUT"`

	CacheDriver   string        `mapstructure:"CACHE_DRIVER"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`

	NATSURL string `mapstructure:"NATS_URL"`

	MinIOEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket    string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	MinIOPublicURL string `mapstructure:"MINIO_PUBLIC_URL"`
	MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	JWTSecret            string        `mapstructure:"JWT_SECRET"`
	JWTExpiresIn         time.Duration `mapstructure:"JWT_EXPIRES_IN"`
	PaymentWebhookSecret string        `mapstructure:"PAYMENT_WEBHOOK_SECRET"`

	RateLimitRPS       float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int     `mapstructure:"RATE_LIMIT_BURST"`
	AuthRateLimitRPS   float64 `mapstructure:"AUTH_RATE_LIMIT_RPS"`
	AuthRateLimitBurst int     `mapstructure:"AUTH_RATE_LIMIT_BURST"`

	JobInterval        time.Duration `mapstructure:"JOB_INTERVAL"`
	ExpiryNoticeWindow time.Duration `mapstructure:"EXPIRY_NOTICE_WINDOW"`

	OTelExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// IsDevelopment reports whether error responses may carry internals.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "production")
	v.SetDefault("SERVICE_NAME", "adwall-service")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("METRICS_PORT", "9095")
	v.SetDefault("GRPC_HEALTH_PORT", "50060")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "adwall")
	v.SetDefault("MONGO_TIMEOUT", "10s")

	v.SetDefault("CACHE_DRIVER", "memory")
	v.SetDefault("CACHE_TTL", "2m")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("NATS_URL", "")

	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "adwall-media")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_URL", "")
	v.SetDefault("MAX_UPLOAD_BYTES", 20<<20)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "Adwall <no-reply@adwall.local>")

	v.SetDefault("JWT_SECRET", insecureJWTSecret)
	v.SetDefault("JWT_EXPIRES_IN", "720h")
	v.SetDefault("PAYMENT_WEBHOOK_SECRET", "")

	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("AUTH_RATE_LIMIT_RPS", 0.2)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 5)

	v.SetDefault("JOB_INTERVAL", "1h")
	v.SetDefault("EXPIRY_NOTICE_WINDOW", "72h")

	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

// LoadConfig reads configuration from environment variables. A .env file, if
// any, is loaded by main before this is called.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == insecureJWTSecret {
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Please set a strong secret in your environment.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("metrics_port", cfg.MetricsPort),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("cache_driver", cfg.CacheDriver),
		zap.Bool("nats_enabled", cfg.NATSURL != ""),
		zap.Bool("minio_enabled", cfg.MinIOEndpoint != ""),
		zap.Bool("smtp_enabled", cfg.SMTPHost != ""),
		zap.Bool("payment_webhook_enabled", cfg.PaymentWebhookSecret != ""),
		zap.String("otel_endpoint", cfg.OTelExporterOTLPEndpoint),
	)
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is not set")
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("MONGO_DATABASE is not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWTExpiresIn)
	}
	c.CacheDriver = strings.ToLower(c.CacheDriver)
	switch c.CacheDriver {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("CACHE_DRIVER must be one of redis, memory, none, got %q", c.CacheDriver)
	}
	return nil
}
