package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"muhurta/internal/domain"
)

// ScoreCache keeps computed day scores in Redis so repeated queries for
// the same (chart, date) pair skip the scoring pipeline entirely.
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	return &ScoreCache{client: client, ttl: ttl}
}

func scoreKey(chartID, date string) string {
	return fmt.Sprintf("dayscore:%s:%s", chartID, date)
}

// Get returns the cached score for the pair, or nil on a miss. Decode
// failures are treated as misses so a stale shape never breaks a query.
func (c *ScoreCache) Get(ctx context.Context, chartID, date string) (*domain.DayScore, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, scoreKey(chartID, date)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ds domain.DayScore
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, nil
	}
	return &ds, nil
}

func (c *ScoreCache) Set(ctx context.Context, chartID string, ds *domain.DayScore) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(ds)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, scoreKey(chartID, ds.Date), raw, c.ttl).Err()
}

// InvalidateChart drops every cached score for one chart, used when the
// chart is deleted or the rule catalog is reloaded.
func (c *ScoreCache) InvalidateChart(ctx context.Context, chartID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	var cursor uint64
	pattern := scoreKey(chartID, "*")
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
