package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Booking  BookingConfig
	Session  SessionConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

// RedisConfig leaves Addr empty to run without the seat lock and search cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig leaves Brokers empty to run without booking events.
type KafkaConfig struct {
	Brokers      []string
	BookingTopic string
	GroupID      string
}

type BookingConfig struct {
	LockTTL        time.Duration
	LockWait       time.Duration
	SearchCacheTTL time.Duration
}

type SessionConfig struct {
	ExpiryHours int
}

func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom reads an env-format file; a missing file falls back to
// defaults and the process environment.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "flight-booking")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_BOOKING_TOPIC", "booking-events")
	v.SetDefault("KAFKA_GROUP_ID", "flight-booking-notifier")
	v.SetDefault("BOOKING_LOCK_TTL_SECONDS", 10)
	v.SetDefault("BOOKING_LOCK_WAIT_MS", 2000)
	v.SetDefault("SEARCH_CACHE_TTL_SECONDS", 30)
	v.SetDefault("SESSION_EXPIRY_HOURS", 24)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:            v.GetString("APP_NAME"),
			Port:            v.GetString("PORT"),
			Debug:           v.GetBool("DEBUG"),
			LogPath:         v.GetString("LOG_PATH"),
			ShutdownTimeout: time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(v.GetString("KAFKA_BROKERS")),
			BookingTopic: v.GetString("KAFKA_BOOKING_TOPIC"),
			GroupID:      v.GetString("KAFKA_GROUP_ID"),
		},
		Booking: BookingConfig{
			LockTTL:        time.Duration(v.GetInt("BOOKING_LOCK_TTL_SECONDS")) * time.Second,
			LockWait:       time.Duration(v.GetInt("BOOKING_LOCK_WAIT_MS")) * time.Millisecond,
			SearchCacheTTL: time.Duration(v.GetInt("SEARCH_CACHE_TTL_SECONDS")) * time.Second,
		},
		Session: SessionConfig{
			ExpiryHours: v.GetInt("SESSION_EXPIRY_HOURS"),
		},
	}

	return config, nil
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
