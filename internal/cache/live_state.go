package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/stats"
)

// LiveState caches the per-date headline counters so console reconnects and
// polling clients do not hit postgres for every refresh. Mutations rewrite
// the affected date's entry; a short TTL bounds staleness either way.
type LiveState struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLiveState returns a redis-backed live-state cache.
func NewLiveState(client *redis.Client, ttl time.Duration) *LiveState {
	return &LiveState{client: client, ttl: ttl}
}

func summaryKey(date string) string {
	return fmt.Sprintf("smartpark:summary:%s", date)
}

// SaveSummary caches the headline counters for a business day.
func (c *LiveState) SaveSummary(ctx context.Context, date string, sum stats.Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey(date), data, c.ttl).Err()
}

// Summary returns the cached counters for a business day. The second return
// is false on a cache miss.
func (c *LiveState) Summary(ctx context.Context, date string) (stats.Summary, bool, error) {
	result, err := c.client.Get(ctx, summaryKey(date)).Result()
	if err == redis.Nil {
		return stats.Summary{}, false, nil
	}
	if err != nil {
		return stats.Summary{}, false, err
	}
	var sum stats.Summary
	if err := json.Unmarshal([]byte(result), &sum); err != nil {
		return stats.Summary{}, false, err
	}
	return sum, true, nil
}

// Invalidate drops the cached counters for a business day.
func (c *LiveState) Invalidate(ctx context.Context, date string) error {
	return c.client.Del(ctx, summaryKey(date)).Err()
}
