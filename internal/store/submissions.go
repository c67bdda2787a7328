package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/models"
)

const submissionColumns = `id, application_id, content_url, platform, note, review_status, feedback, revision_count, submitted_at, reviewed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*models.MissionSubmission, error) {
	var (
		sub        models.MissionSubmission
		reviewedAt sql.NullTime
	)
	if err := row.Scan(
		&sub.ID, &sub.ApplicationID, &sub.ContentURL, &sub.Platform, &sub.Note,
		&sub.ReviewStatus, &sub.Feedback, &sub.RevisionCount, &sub.SubmittedAt, &reviewedAt,
	); err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		sub.ReviewedAt = &t
	}
	return &sub, nil
}

func (s *Store) ResolveSubmission(ctx context.Context, submissionID string) (*models.SubmissionRef, error) {
	var ref models.SubmissionRef
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.application_id, a.campaign_id
		FROM mission_submissions s
		JOIN campaign_applications a ON a.id = s.application_id
		WHERE s.id = $1`, submissionID).
		Scan(&ref.SubmissionID, &ref.ApplicationID, &ref.CampaignID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("submission", submissionID)
	}
	if err != nil {
		return nil, queryError("resolve submission", err)
	}
	return &ref, nil
}

func (t *pgTx) LockSubmission(ctx context.Context, submissionID string) (*models.MissionSubmission, error) {
	sub, err := scanSubmission(t.tx.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM mission_submissions WHERE id = $1 FOR UPDATE`, submissionID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("submission", submissionID)
	}
	if err != nil {
		return nil, queryError("lock submission", err)
	}
	return sub, nil
}

func (t *pgTx) LockSubmissionForApplication(ctx context.Context, applicationID string) (*models.MissionSubmission, error) {
	sub, err := scanSubmission(t.tx.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM mission_submissions WHERE application_id = $1 FOR UPDATE`, applicationID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError("lock submission for application", err)
	}
	return sub, nil
}

func (t *pgTx) InsertSubmission(ctx context.Context, sub *models.MissionSubmission) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO mission_submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sub.ID, sub.ApplicationID, sub.ContentURL, sub.Platform, sub.Note,
		string(sub.ReviewStatus), sub.Feedback, sub.RevisionCount, sub.SubmittedAt, sub.ReviewedAt,
	)
	if isUniqueViolation(err) {
		return errors.NewInvalidStateError(fmt.Sprintf("application %s already has a submission", sub.ApplicationID))
	}
	if err != nil {
		return errors.NewDatabaseInsertFailedError("insert submission", err)
	}
	return nil
}

func (t *pgTx) UpdateSubmission(ctx context.Context, sub *models.MissionSubmission) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE mission_submissions
		SET content_url = $2, platform = $3, note = $4, review_status = $5,
		    feedback = $6, revision_count = $7, submitted_at = $8, reviewed_at = $9
		WHERE id = $1`,
		sub.ID, sub.ContentURL, sub.Platform, sub.Note, string(sub.ReviewStatus),
		sub.Feedback, sub.RevisionCount, sub.SubmittedAt, sub.ReviewedAt,
	)
	if err != nil {
		return queryError("update submission", err)
	}
	return mustAffectOne(res, "submission", sub.ID)
}
