package store

import (
	"context"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/models"
)

func (t *pgTx) PortfolioExists(ctx context.Context, applicationID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM portfolio_entries WHERE application_id = $1)`, applicationID).
		Scan(&exists)
	if err != nil {
		return false, queryError("check portfolio entry", err)
	}
	return exists, nil
}

func (t *pgTx) InsertPortfolioEntry(ctx context.Context, e *models.PortfolioEntry) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO portfolio_entries (
			id, application_id, influencer_id, campaign_id, campaign_title, campaign_category,
			platform, content_url, completed_at, rating, review_text, is_public, is_featured
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (application_id) DO NOTHING`,
		e.ID, e.ApplicationID, e.InfluencerID, e.CampaignID, e.CampaignTitle, e.CampaignCategory,
		e.Platform, e.ContentURL, e.CompletedAt, e.Rating, e.ReviewText, e.IsPublic, e.IsFeatured,
	)
	if err != nil {
		return false, errors.NewDatabaseInsertFailedError("insert portfolio entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, queryError("rows affected", err)
	}
	return n == 1, nil
}
