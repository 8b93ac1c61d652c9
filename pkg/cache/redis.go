package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const searchGenerationKey = "cache:flights:search:gen"

// deletes the lock only while it still holds the caller's token
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCache serves the per-flight booking lock and the flight search cache.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg utils.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// AcquireFlightLock sets the flight lock to token if nobody holds it.
func (c *RedisCache) AcquireFlightLock(ctx context.Context, flightID uuid.UUID, token string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, FlightLockKey(flightID), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock for flight %s: %w", flightID, err)
	}
	return ok, nil
}

// ReleaseFlightLock is a no-op when the lock expired or changed hands.
func (c *RedisCache) ReleaseFlightLock(ctx context.Context, flightID uuid.UUID, token string) error {
	if err := releaseLockScript.Run(ctx, c.client, []string{FlightLockKey(flightID)}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock for flight %s: %w", flightID, err)
	}
	return nil
}

// GetSearch decodes a cached search page into dest. found is false on a miss.
func (c *RedisCache) GetSearch(ctx context.Context, key string, dest any) (bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, err
	}

	data, err := c.client.Get(ctx, SearchKey(gen, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get cached search: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached search: %w", err)
	}
	return true, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, key string, value any) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode search: %w", err)
	}
	return c.client.Set(ctx, SearchKey(gen, key), payload, c.searchTTL).Err()
}

// InvalidateFlights bumps the search generation so every cached page goes
// stale at once; old entries expire on their TTL.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	if err := c.client.Incr(ctx, searchGenerationKey).Err(); err != nil {
		return fmt.Errorf("invalidate flight search cache: %w", err)
	}
	return nil
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, searchGenerationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read search generation: %w", err)
	}
	return gen, nil
}

func FlightLockKey(flightID uuid.UUID) string {
	return fmt.Sprintf("lock:flight:%s", flightID)
}

func SearchKey(gen int64, key string) string {
	return fmt.Sprintf("cache:flights:search:%d:%s", gen, key)
}
