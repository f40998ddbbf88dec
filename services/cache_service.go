package services

import (
	"context"
	"encoding/json"
	"fmt"
	"haya_server/config"
	"haya_server/structs"
	"strings"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// CacheService provides Redis caching functionality: catalog snapshot
// caching, server-side cart persistence, and rate-limiter counters.
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
}

func NewCacheService(logger *gecho.Logger, cfg *structs.Config) *CacheService {
	return &CacheService{
		logger: logger,
		config: cfg,
		client: getRedisClient(),
	}
}

// getRedisClient returns a singleton Redis client with proper connection pooling
func getRedisClient() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.GetConfig()
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Address,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,

			// Connection pool settings
			PoolSize:        cfg.Cache.PoolSize,
			MinIdleConns:    cfg.Cache.MinIdleConns,
			MaxIdleConns:    cfg.Cache.MaxIdleConns,
			PoolTimeout:     cfg.Cache.PoolTimeout,
			ConnMaxIdleTime: cfg.Cache.IdleTimeout,

			// Timeouts
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,

			// Retry settings
			MaxRetries: cfg.Cache.MaxRetries,
		})
	})
	return redisClient
}

// Close closes the Redis connection pool
func (cs *CacheService) Close() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}

// isRetryableCacheError determines if an error is worth retrying
func isRetryableCacheError(err error) bool {
	if err == nil {
		return false
	}

	// Don't retry on nil results (key not found)
	if err == redis.Nil {
		return false
	}

	errStr := err.Error()
	retryableErrors := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"no such host",
		"network is unreachable",
	}

	for _, retryableErr := range retryableErrors {
		if strings.Contains(errStr, retryableErr) {
			return true
		}
	}

	return false
}

// withRetry executes a Redis operation with simple backoff retry logic
func (cs *CacheService) withRetry(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == maxRetries {
			break
		}

		if !isRetryableCacheError(err) {
			return err
		}

		backoff := 100 * (1 << attempt) // exponential, 100ms base
		backoff = min(backoff, 2000)
		time.Sleep(time.Duration(backoff) * time.Millisecond)
	}

	return fmt.Errorf("redis operation failed after %d retries: %w", maxRetries, lastErr)
}

// Set sets a key with TTL and automatic retry logic
func (cs *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return cs.withRetry(func() error {
		return cs.client.Set(ctx, key, value, ttl).Err()
	}, cs.config.Cache.MaxRetries)
}

// Get retrieves a key with automatic retry logic. A missing key is returned
// as ("", nil).
func (cs *CacheService) Get(ctx context.Context, key string) (string, error) {
	var result string

	err := cs.withRetry(func() error {
		val, err := cs.client.Get(ctx, key).Result()
		if err == redis.Nil {
			result = ""
			return nil // Don't retry on key not found
		}
		if err != nil {
			return err
		}
		result = val
		return nil
	}, cs.config.Cache.MaxRetries)

	if err != nil {
		return "", err
	}

	return result, nil
}

// Delete removes a key
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	return cs.withRetry(func() error {
		return cs.client.Del(ctx, key).Err()
	}, cs.config.Cache.MaxRetries)
}

// Incr atomically increments a counter and sets its TTL on first use.
// Used by the rate-limit middleware.
func (cs *CacheService) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var count int64

	err := cs.withRetry(func() error {
		pipe := cs.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		count = incr.Val()
		return nil
	}, cs.config.Cache.MaxRetries)

	return count, err
}

// Health pings Redis.
func (cs *CacheService) Health(ctx context.Context) error {
	return cs.client.Ping(ctx).Err()
}

// --- Catalog snapshot cache ---

func snapshotCacheKey(productID uuid.UUID) string {
	return "haya_snapshot:" + productID.String()
}

// GetSnapshot returns a cached catalog snapshot, or nil on a miss.
func (cs *CacheService) GetSnapshot(ctx context.Context, productID uuid.UUID) (*structs.ProductSnapshot, error) {
	raw, err := cs.Get(ctx, snapshotCacheKey(productID))
	if err != nil || raw == "" {
		return nil, err
	}

	var snapshot structs.ProductSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		// A corrupt entry is treated as a miss and evicted.
		cs.logger.Warn("Corrupt snapshot cache entry", gecho.Field("product_id", productID), gecho.Field("error", err))
		_ = cs.Delete(ctx, snapshotCacheKey(productID))
		return nil, nil
	}

	return &snapshot, nil
}

// SetSnapshot caches a catalog snapshot with the configured short TTL.
// Stock is fast-moving data: the TTL keeps staleness bounded, and order
// placement never reads through this cache.
func (cs *CacheService) SetSnapshot(ctx context.Context, snapshot *structs.ProductSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return cs.Set(ctx, snapshotCacheKey(snapshot.ProductID), data, cs.config.Cache.SnapshotTTL)
}

// InvalidateSnapshot drops a product's cached snapshot after an admin write.
func (cs *CacheService) InvalidateSnapshot(ctx context.Context, productID uuid.UUID) error {
	return cs.Delete(ctx, snapshotCacheKey(productID))
}
