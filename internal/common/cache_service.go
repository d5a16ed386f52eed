package common

import (
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// CacheService is the in-memory cache used by a single-node deploy.
// Swap in RedisCacheService when more than one API node runs.
type CacheService struct {
	cache *cache.Cache
	group singleflight.Group
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpirationSeconds, cleanUpIntervalSeconds int) *CacheService {
	defaultExpiration := time.Duration(defaultExpirationSeconds) * time.Second
	cleanUpInterval := time.Duration(cleanUpIntervalSeconds) * time.Second
	c := cache.New(defaultExpiration, cleanUpInterval)
	return &CacheService{cache: c}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

// GetOrSet loads through the cache. The singleflight group keeps a
// burst of identical misses (the dashboard re-queries availability on
// every keystroke) from stampeding the database.
func (cs *CacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := cs.Get(key); found {
		return val, nil
	}

	val, err, _ := cs.group.Do(key, func() (any, error) {
		if v, found := cs.Get(key); found {
			return v, nil
		}
		v, err := loader()
		if err != nil {
			return nil, err
		}
		cs.Set(key, v, duration)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Close closes the cache (no-op for in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}
