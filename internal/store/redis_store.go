package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/ipscope/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geo:"

// RedisStore caches payloads in Redis
//
// Key Format: geo:<ip_address>
// Value: JSON-encoded GeoResponse, expiring after ttl (zero = no expiry)
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func redisKey(ip string) string {
	return redisKeyPrefix + ip
}

func (s *RedisStore) FindByIP(ctx context.Context, ip string) (*models.GeoResponse, error) {
	val, err := s.client.Get(ctx, redisKey(ip)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}

	var resp models.GeoResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &resp, nil
}

func (s *RedisStore) Save(ctx context.Context, resp *models.GeoResponse) error {
	return s.set(ctx, resp, s.ttl)
}

func (s *RedisStore) set(ctx context.Context, resp *models.GeoResponse, ttl time.Duration) error {
	if resp == nil || resp.IP == "" {
		return errNoAddress
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(resp.IP), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

// LoadFromCSV warms the cache from a seed file; seeded keys never expire
// Returns the number of rows written.
func (s *RedisStore) LoadFromCSV(ctx context.Context, csvPath string) (int, error) {
	rows, err := ReadCSV(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load CSV: %w", err)
	}

	for i, resp := range rows {
		if err := s.set(ctx, resp, 0); err != nil {
			return i, fmt.Errorf("failed to store IP %s: %w", resp.IP, err)
		}
	}
	return len(rows), nil
}

// IsEmpty reports whether no geo:* keys exist
func (s *RedisStore) IsEmpty(ctx context.Context) (bool, error) {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return false, fmt.Errorf("failed to scan Redis keys: %w", err)
		}
		if len(keys) > 0 {
			return false, nil
		}
		if next == 0 {
			return true, nil
		}
		cursor = next
	}
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
