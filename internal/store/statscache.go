package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/metrics"
	"mission-workers/internal/models"
)

const (
	statsKeyPrefix = "missions:stats:"
	// statsGenerationSuffix names the counter Invalidate bumps. It has no TTL.
	statsGenerationSuffix = ":gen"
)

// setIfGeneration stores ARGV[2] under KEYS[1] only while KEYS[2] still holds
// the generation the caller read.
const setIfGeneration = `
local current = tonumber(redis.call('GET', KEYS[2]) or '0')
if current ~= tonumber(ARGV[1]) then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

const bumpGeneration = `
redis.call('INCR', KEYS[2])
return redis.call('DEL', KEYS[1])
`

// StatsCache keeps computed campaign statistics in Redis. Every failure is
// logged and treated as a miss so reads fall back to PostgreSQL.
type StatsCache struct {
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewStatsCache(rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *StatsCache {
	return &StatsCache{redis: rdb, ttl: ttl, logger: log}
}

func statsKeys(campaignID string) []string {
	key := statsKeyPrefix + campaignID
	return []string{key, key + statsGenerationSuffix}
}

// Get returns the cached statistics and the campaign's current generation.
// The generation is -1 when Redis could not be read.
func (c *StatsCache) Get(ctx context.Context, campaignID string) (*models.CampaignStatistics, int64, bool) {
	vals, err := c.redis.MGet(ctx, statsKeys(campaignID)...).Result()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("statistics", "error").Inc()
		c.warn("get", campaignID, err)
		return nil, -1, false
	}

	var generation int64
	if s, ok := vals[1].(string); ok {
		if generation, err = strconv.ParseInt(s, 10, 64); err != nil {
			metrics.CacheLookups.WithLabelValues("statistics", "error").Inc()
			c.warn("decode generation", campaignID, err)
			return nil, -1, false
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		metrics.CacheLookups.WithLabelValues("statistics", "miss").Inc()
		return nil, generation, false
	}
	var stats models.CampaignStatistics
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		metrics.CacheLookups.WithLabelValues("statistics", "error").Inc()
		c.warn("decode", campaignID, err)
		return nil, generation, false
	}
	metrics.CacheLookups.WithLabelValues("statistics", "hit").Inc()
	return &stats, generation, true
}

// Set stores stats computed after a Get that reported generation. The write
// is dropped when an Invalidate has moved the generation on since then.
func (c *StatsCache) Set(ctx context.Context, stats *models.CampaignStatistics, generation int64) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		c.warn("encode", stats.CampaignID, err)
		return
	}
	stored, err := c.redis.Eval(ctx, setIfGeneration, statsKeys(stats.CampaignID),
		generation, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.warn("set", stats.CampaignID, err)
		return
	}
	if stored == 0 {
		c.logger.Debug("statistics changed while computing, not caching", map[string]interface{}{
			"campaignId": stats.CampaignID,
			"generation": generation,
		})
	}
}

// Invalidate drops the cached statistics and bumps the generation so that a
// computation already in flight cannot store its result.
func (c *StatsCache) Invalidate(ctx context.Context, campaignID string) {
	if err := c.redis.Eval(ctx, bumpGeneration, statsKeys(campaignID)).Err(); err != nil {
		c.warn("invalidate", campaignID, err)
	}
}

func (c *StatsCache) warn(op, campaignID string, err error) {
	stdErr := errors.NewCacheOperationFailedError("statistics "+op, err)
	c.logger.Warn("statistics cache operation failed", map[string]interface{}{
		"campaignId": campaignID,
		"error":      stdErr.Error(),
	})
}
