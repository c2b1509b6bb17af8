package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// DedupStore suppresses repeat submissions (double-tap purchase, retried
// deposit request) within a short TTL window. Best-effort, not exactly-once:
// entries live only in redis and expire on their own. With no redis the
// store allows everything.
type DedupStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDedupStore(client *redis.Client, ttl time.Duration) *DedupStore {
	return &DedupStore{client: client, ttl: ttl}
}

// Acquire claims the key for one window. Returns false when another request
// holds it, true on claim or on any redis failure.
func (s *DedupStore) Acquire(ctx context.Context, key string) bool {
	if s == nil || s.client == nil {
		return true
	}
	ok, err := s.client.SetNX(ctx, "dedup:"+key, 1, s.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release frees the key early, letting the user retry immediately after a
// failed operation instead of waiting out the TTL.
func (s *DedupStore) Release(ctx context.Context, key string) {
	if s == nil || s.client == nil {
		return
	}
	s.client.Del(ctx, "dedup:"+key)
}
