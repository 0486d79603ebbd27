package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort        string
	LogLevel        string
	Timezone        string
	ShutdownTimeout time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	HelpshipDevelopmentURL string
	HelpshipProductionURL  string
	HelpshipTokenPath      string
	HelpshipClientTTL      time.Duration
	HelpshipRequestTimeout time.Duration
	HelpshipRatePerSecond  float64
	HelpshipBurst          int

	AdGraphURL       string
	AdRequestTimeout time.Duration

	CronSecret               string
	JobsEnabled              bool
	QueueExpirySchedule      string
	ScheduledConfirmSchedule string
	SweepLockTTL             time.Duration

	WorkerCount       int
	WorkerQueueSize   int
	WorkerTaskTimeout time.Duration

	KafkaBrokers          []string
	KafkaOrderStatusTopic string
	RedisAddr             string
	RedisPassword         string
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// Location returns the business timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LoadConfig reads the configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set take precedence.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "Europe/Bucharest")
	v.SetDefault("SHUTDOWN_TIMEOUT", "20s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "orderflow")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("HELPSHIP_DEVELOPMENT_URL", "https://api-dev.helpship.ro")
	v.SetDefault("HELPSHIP_PRODUCTION_URL", "https://api.helpship.ro")
	v.SetDefault("HELPSHIP_TOKEN_PATH", "/connect/token")
	v.SetDefault("HELPSHIP_CLIENT_TTL", "30m")
	v.SetDefault("HELPSHIP_REQUEST_TIMEOUT", "15s")
	v.SetDefault("HELPSHIP_RATE_PER_SECOND", 5)
	v.SetDefault("HELPSHIP_BURST", 10)
	v.SetDefault("AD_GRAPH_URL", "https://graph.facebook.com/v19.0")
	v.SetDefault("AD_REQUEST_TIMEOUT", "10s")
	v.SetDefault("JOBS_ENABLED", true)
	v.SetDefault("QUEUE_EXPIRY_SCHEDULE", "0 * * * * *")
	v.SetDefault("SCHEDULED_CONFIRM_SCHEDULE", "0 0 6 * * *")
	v.SetDefault("SWEEP_LOCK_TTL", "5m")
	v.SetDefault("WORKER_COUNT", 8)
	v.SetDefault("WORKER_QUEUE_SIZE", 256)
	v.SetDefault("WORKER_TASK_TIMEOUT", "30s")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_ORDER_STATUS_TOPIC", "orders.status-changed")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CRON_SECRET", "")

	cfg := Config{
		HTTPPort:        v.GetString("HTTP_PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		Timezone:        v.GetString("TIMEZONE"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),

		HelpshipDevelopmentURL: strings.TrimRight(v.GetString("HELPSHIP_DEVELOPMENT_URL"), "/"),
		HelpshipProductionURL:  strings.TrimRight(v.GetString("HELPSHIP_PRODUCTION_URL"), "/"),
		HelpshipTokenPath:      v.GetString("HELPSHIP_TOKEN_PATH"),
		HelpshipClientTTL:      v.GetDuration("HELPSHIP_CLIENT_TTL"),
		HelpshipRequestTimeout: v.GetDuration("HELPSHIP_REQUEST_TIMEOUT"),
		HelpshipRatePerSecond:  v.GetFloat64("HELPSHIP_RATE_PER_SECOND"),
		HelpshipBurst:          v.GetInt("HELPSHIP_BURST"),

		AdGraphURL:       strings.TrimRight(v.GetString("AD_GRAPH_URL"), "/"),
		AdRequestTimeout: v.GetDuration("AD_REQUEST_TIMEOUT"),

		CronSecret:               strings.TrimSpace(v.GetString("CRON_SECRET")),
		JobsEnabled:              v.GetBool("JOBS_ENABLED"),
		QueueExpirySchedule:      v.GetString("QUEUE_EXPIRY_SCHEDULE"),
		ScheduledConfirmSchedule: v.GetString("SCHEDULED_CONFIRM_SCHEDULE"),
		SweepLockTTL:             v.GetDuration("SWEEP_LOCK_TTL"),

		WorkerCount:       v.GetInt("WORKER_COUNT"),
		WorkerQueueSize:   v.GetInt("WORKER_QUEUE_SIZE"),
		WorkerTaskTimeout: v.GetDuration("WORKER_TASK_TIMEOUT"),

		KafkaBrokers:          splitList(v.GetString("KAFKA_BROKERS")),
		KafkaOrderStatusTopic: v.GetString("KAFKA_ORDER_STATUS_TOPIC"),
		RedisAddr:             strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
	}

	if _, err := cfg.Location(); err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
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
