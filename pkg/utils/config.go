package utils

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Booking   BookingConfig
	RateLimit RateLimitConfig
	Session   SessionConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	StorageDriver  string // postgres | memory
	MetricsEnabled bool
	ExportPath     string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	MaxConns    int32
	AutoMigrate bool
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

type BookingConfig struct {
	// PendingTTL of zero disables auto-expiry of pending bookings.
	PendingTTL    time.Duration
	SweepInterval time.Duration
	// CreateLimit bookings per CreateWindow per renter, enforced through Redis.
	CreateLimit  int
	CreateWindow time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type SessionConfig struct {
	ExpiryHours int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "car-rental")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("EXPORT_PATH", "exports/")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("KAFKA_TOPIC", "booking-events")
	viper.SetDefault("KAFKA_BATCH_TIMEOUT", "50ms")
	viper.SetDefault("BOOKING_PENDING_TTL", "0s")
	viper.SetDefault("BOOKING_SWEEP_INTERVAL", "5m")
	viper.SetDefault("BOOKING_CREATE_LIMIT", 10)
	viper.SetDefault("BOOKING_CREATE_WINDOW", "1m")
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine, everything can come from the environment.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			StorageDriver:  strings.ToLower(viper.GetString("STORAGE_DRIVER")),
			MetricsEnabled: viper.GetBool("METRICS_ENABLED"),
			ExportPath:     viper.GetString("EXPORT_PATH"),
		},
		Database: DatabaseConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			Name:        viper.GetString("DB_NAME"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASS"),
			MaxConns:    viper.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:        viper.GetString("KAFKA_TOPIC"),
			BatchTimeout: viper.GetDuration("KAFKA_BATCH_TIMEOUT"),
		},
		Booking: BookingConfig{
			PendingTTL:    viper.GetDuration("BOOKING_PENDING_TTL"),
			SweepInterval: viper.GetDuration("BOOKING_SWEEP_INTERVAL"),
			CreateLimit:   viper.GetInt("BOOKING_CREATE_LIMIT"),
			CreateWindow:  viper.GetDuration("BOOKING_CREATE_WINDOW"),
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
