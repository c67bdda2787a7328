package store

import (
	"context"
	"database/sql"
	stderrors "errors"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/models"
)

func (t *pgTx) LockApplication(ctx context.Context, applicationID string) (*models.ApplicationRecord, error) {
	var app models.ApplicationRecord
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, campaign_id, influencer_id, status, created_at, updated_at
		FROM campaign_applications
		WHERE id = $1
		FOR UPDATE`, applicationID).
		Scan(&app.ID, &app.CampaignID, &app.InfluencerID, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("application", applicationID)
	}
	if err != nil {
		return nil, queryError("lock application", err)
	}
	return &app, nil
}

func (t *pgTx) UpdateApplicationStatus(ctx context.Context, app *models.ApplicationRecord) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE campaign_applications
		SET status = $2, updated_at = $3
		WHERE id = $1`, app.ID, string(app.Status), app.UpdatedAt)
	if err != nil {
		return queryError("update application status", err)
	}
	return mustAffectOne(res, "application", app.ID)
}
