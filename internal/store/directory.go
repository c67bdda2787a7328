package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/metrics"
	"mission-workers/internal/models"
)

const campaignKeyPrefix = "missions:campaign:"

// CampaignDirectory reads campaign snapshots from PostgreSQL behind a Redis
// read-through cache. A Redis outage degrades to direct reads.
type CampaignDirectory struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCampaignDirectory(db *sql.DB, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CampaignDirectory {
	return &CampaignDirectory{db: db, redis: rdb, ttl: ttl, logger: log}
}

func (d *CampaignDirectory) GetCampaign(ctx context.Context, campaignID string) (*models.CampaignSnapshot, error) {
	if cached, ok := d.cached(ctx, campaignID); ok {
		return cached, nil
	}

	var c models.CampaignSnapshot
	err := d.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, category FROM campaigns WHERE id = $1`, campaignID).
		Scan(&c.ID, &c.OwnerID, &c.Title, &c.Category)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("campaign", campaignID)
	}
	if err != nil {
		return nil, queryError("get campaign", err)
	}

	d.store(ctx, &c)
	return &c, nil
}

func (d *CampaignDirectory) cached(ctx context.Context, campaignID string) (*models.CampaignSnapshot, bool) {
	if d.redis == nil {
		return nil, false
	}
	raw, err := d.redis.Get(ctx, campaignKeyPrefix+campaignID).Bytes()
	if err == redis.Nil {
		metrics.CacheLookups.WithLabelValues("campaign", "miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("campaign", "error").Inc()
		d.logger.Warn("campaign cache read failed", map[string]interface{}{
			"campaignId": campaignID,
			"error":      err.Error(),
		})
		return nil, false
	}
	var c models.CampaignSnapshot
	if err := json.Unmarshal(raw, &c); err != nil {
		metrics.CacheLookups.WithLabelValues("campaign", "error").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("campaign", "hit").Inc()
	return &c, true
}

func (d *CampaignDirectory) store(ctx context.Context, c *models.CampaignSnapshot) {
	if d.redis == nil {
		return
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := d.redis.Set(ctx, campaignKeyPrefix+c.ID, raw, d.ttl).Err(); err != nil {
		d.logger.Warn("campaign cache write failed", map[string]interface{}{
			"campaignId": c.ID,
			"error":      err.Error(),
		})
	}
}

// InfluencerDirectory resolves influencer contact details.
type InfluencerDirectory struct {
	db *sql.DB
}

func NewInfluencerDirectory(db *sql.DB) *InfluencerDirectory {
	return &InfluencerDirectory{db: db}
}

// ContactEmail returns "" without error when the influencer has no address on file.
func (d *InfluencerDirectory) ContactEmail(ctx context.Context, influencerID string) (string, error) {
	var email string
	err := d.db.QueryRowContext(ctx, `SELECT email FROM influencers WHERE id = $1`, influencerID).Scan(&email)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", queryError("get influencer email", err)
	}
	return email, nil
}
