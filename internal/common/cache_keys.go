package common

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Cache key builders. List and availability keys embed a generation
// number: bumping the generation orphans every cached list at once,
// which is the "invalidate broadly, trust the server on next read"
// policy — filtered, paginated views cannot be patched piecemeal
// without knowing every open filter's match criteria.

const genTTL = 24 * time.Hour

func ScheduleDetailKey(id string) string {
	return "schduale:detail:" + id
}

func ScheduleListKey(gen uint64, params string) string {
	return fmt.Sprintf("schduale:list:v%d:%s", gen, params)
}

func ScheduleByJobKey(gen uint64, jobID string) string {
	return fmt.Sprintf("schduale:byjob:v%d:%s", gen, jobID)
}

func AvailabilityKey(gen uint64, startAt, endAt string) string {
	return fmt.Sprintf("availability:v%d:%s:%s", gen, startAt, endAt)
}

func JobDetailKey(id string) string {
	return "job:detail:" + id
}

// Generation is a monotonic counter stored in the cache itself, so the
// Redis implementation shares invalidation across API nodes. Bumps are
// serialized per process; cross-node bumps may race, which only costs
// an extra refetch, never a stale read past the entry TTL.
type Generation struct {
	cache CacheInterface
	key   string
	mu    sync.Mutex
}

func NewGeneration(cache CacheInterface, name string) *Generation {
	return &Generation{cache: cache, key: "gen:" + name}
}

func (g *Generation) Current() uint64 {
	v, ok := g.cache.Get(g.key)
	if !ok {
		g.cache.Set(g.key, uint64(1), genTTL)
		return 1
	}
	return toUint64(v)
}

func (g *Generation) Bump() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.Current() + 1
	g.cache.Set(g.key, n, genTTL)
	return n
}

func toUint64(v interface{}) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case int:
		return uint64(n)
	case int64:
		return uint64(n)
	case float64:
		return uint64(n)
	case []byte:
		parsed, _ := strconv.ParseUint(string(n), 10, 64)
		return parsed
	case json.RawMessage:
		parsed, _ := strconv.ParseUint(string(n), 10, 64)
		return parsed
	default:
		if s, ok := v.(fmt.Stringer); ok {
			parsed, _ := strconv.ParseUint(s.String(), 10, 64)
			return parsed
		}
		return 1
	}
}
