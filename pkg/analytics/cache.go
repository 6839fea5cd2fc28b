package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diacare-ai/readmission/pkg/common/logger"
	"github.com/diacare-ai/readmission/pkg/common/models"
)

const statsCacheKey = "dashboard:stats"

// Cache keeps the dashboard stats payload in Redis so repeated dashboard
// polls do not re-scan the store. A nil Cache (or nil client) disables
// caching entirely; every method is safe to call on it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) GetStats(ctx context.Context) (models.StatsPayload, bool) {
	if c == nil || c.client == nil {
		return models.StatsPayload{}, false
	}
	raw, err := c.client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).Warn("Failed to read cached dashboard stats")
		}
		return models.StatsPayload{}, false
	}
	var payload models.StatsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		logger.Log.WithError(err).Warn("Discarding malformed cached dashboard stats")
		return models.StatsPayload{}, false
	}
	return payload, true
}

func (c *Cache) SetStats(ctx context.Context, payload models.StatsPayload) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsCacheKey, raw, c.ttl).Err()
}

// Invalidate drops the cached payload. Called after every successful batch
// append so the next stats read sees the new rows.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, statsCacheKey).Err()
}
