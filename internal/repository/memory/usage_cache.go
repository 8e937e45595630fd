package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// UsageCache keeps per-user monthly message counts hot so the quota check
// on every chat request does not hit the database.
type UsageCache struct {
	cache *cache.Cache
}

func NewUsageCache() *UsageCache {
	// Counts expire after an hour so a stale cache self-corrects from the
	// database; expired items are purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &UsageCache{
		cache: c,
	}
}

func (r *UsageCache) Get(userId uuid.UUID) (int, bool) {
	if x, found := r.cache.Get(userId.String()); found {
		return x.(int), true
	}
	return 0, false
}

func (r *UsageCache) Set(userId uuid.UUID, count int) {
	r.cache.Set(userId.String(), count, cache.DefaultExpiration)
}

func (r *UsageCache) Increment(userId uuid.UUID) {
	if _, found := r.cache.Get(userId.String()); found {
		_, _ = r.cache.IncrementInt(userId.String(), 1)
	}
}

func (r *UsageCache) Invalidate(userId uuid.UUID) {
	r.cache.Delete(userId.String())
}
