package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	HTTP        ServerConfig
	MySQL       MySQLConfig
	Log         LogConfig
	Stripe      StripeConfig
	Fulfillment FulfillmentConfig
	Mailer      MailerConfig
	Jobs        JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type StripeConfig struct {
	SecretKey                 string
	WebhookSecret             string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
}

type FulfillmentConfig struct {
	// PlatformFeeBps is the platform's share of the gross amount in basis
	// points (1500 = 15%).
	PlatformFeeBps    int32
	ResolveTimeout    time.Duration
	WriteTimeout      time.Duration
	NotifyTimeout     time.Duration
	ReconcileLookback time.Duration
	JobBatchSize      int32
}

type MailerConfig struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
}

type JobsConfig struct {
	ReconcileInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	feeBps := int32(getIntEnv("PURCHASES_PLATFORM_FEE_BPS", 1500))
	if feeBps < 0 || feeBps > 10000 {
		return nil, errors.New("PURCHASES_PLATFORM_FEE_BPS must be between 0 and 10000")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "purchases-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Stripe: StripeConfig{
			SecretKey:                 getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:             getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SignatureToleranceSeconds: int64(getIntEnv("STRIPE_SIGNATURE_TOLERANCE_SECONDS", 300)),
			HTTPTimeout:               getSecondsEnv("STRIPE_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Fulfillment: FulfillmentConfig{
			PlatformFeeBps:    feeBps,
			ResolveTimeout:    getSecondsEnv("PURCHASES_RESOLVE_TIMEOUT_SECONDS", 10*time.Second),
			WriteTimeout:      getSecondsEnv("PURCHASES_WRITE_TIMEOUT_SECONDS", 10*time.Second),
			NotifyTimeout:     getSecondsEnv("PURCHASES_NOTIFY_TIMEOUT_SECONDS", 5*time.Second),
			ReconcileLookback: getMinutesEnv("PURCHASES_RECONCILE_LOOKBACK_MINUTES", 60*time.Minute),
			JobBatchSize:      int32(getIntEnv("PURCHASES_JOB_BATCH_SIZE", 100)),
		},
		Mailer: MailerConfig{
			BaseURL:     getEnv("MAILER_BASE_URL", ""),
			APIKey:      getEnv("MAILER_API_KEY", ""),
			HTTPTimeout: getSecondsEnv("MAILER_HTTP_TIMEOUT_SECONDS", 5*time.Second),
		},
		Jobs: JobsConfig{
			ReconcileInterval: getMinutesEnv("PURCHASES_RECONCILE_INTERVAL_MINUTES", 5*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
