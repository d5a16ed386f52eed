package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"droneworks/opsdesk/internal/logging"
)

// RedisCacheService implements CacheInterface on Redis, for deploys
// running more than one API node. Values round-trip through JSON, so
// Get returns json.RawMessage; callers that need typed values decode
// inside the GetOrSet loader path instead.
type RedisCacheService struct {
	client *redis.Client
	group  singleflight.Group
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

func NewRedisCacheService(client *redis.Client) (*RedisCacheService, error) {
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCacheService{client: client}, nil
}

func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Error("Redis cache: failed to marshal value", "key", key, "error", err.Error())
		return
	}
	if err := r.client.Set(context.Background(), key, data, duration).Err(); err != nil {
		logging.Error("Redis cache: failed to set key", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) Get(key string) (interface{}, bool) {
	val, err := r.client.Get(context.Background(), key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.Error("Redis cache: failed to get key", "key", key, "error", err.Error())
		}
		return nil, false
	}
	return json.RawMessage(val), true
}

func (r *RedisCacheService) Delete(key string) {
	if err := r.client.Del(context.Background(), key).Err(); err != nil {
		logging.Error("Redis cache: failed to delete key", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := r.Get(key); found {
		return val, nil
	}

	val, err, _ := r.group.Do(key, func() (any, error) {
		if v, found := r.Get(key); found {
			return v, nil
		}
		v, err := loader()
		if err != nil {
			return nil, err
		}
		r.Set(key, v, duration)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
