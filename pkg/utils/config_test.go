package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "flight-booking", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, "booking-events", cfg.Kafka.BookingTopic)
	assert.Equal(t, 10*time.Second, cfg.Booking.LockTTL)
	assert.Equal(t, 2*time.Second, cfg.Booking.LockWait)
	assert.Equal(t, 30*time.Second, cfg.Booking.SearchCacheTTL)
	assert.Equal(t, 24, cfg.Session.ExpiryHours)
}

func TestLoadConfigFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=9090\n" +
		"DB_NAME=flights\n" +
		"REDIS_ADDR=localhost:6379\n" +
		"KAFKA_BROKERS=kafka-1:9092, kafka-2:9092,\n" +
		"BOOKING_LOCK_WAIT_MS=500\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "flights", cfg.Database.Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 500*time.Millisecond, cfg.Booking.LockWait)
}

func TestLoadConfigFrom_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\n"), 0o600))
	t.Setenv("PORT", "7070")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.App.Port)
}
