package store

import (
	"context"
	"database/sql"
	"fmt"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/models"
)

const revisionColumns = `id, submission_id, revision_number, requested_by, reason, requested_at, revised_url, completion_note, completed_at`

func scanRevision(row rowScanner) (models.RevisionRequest, error) {
	var (
		rev         models.RevisionRequest
		completedAt sql.NullTime
	)
	err := row.Scan(
		&rev.ID, &rev.SubmissionID, &rev.RevisionNumber, &rev.RequestedBy, &rev.Reason,
		&rev.RequestedAt, &rev.RevisedURL, &rev.CompletionNote, &completedAt,
	)
	if completedAt.Valid {
		t := completedAt.Time
		rev.CompletedAt = &t
	}
	return rev, err
}

func (t *pgTx) ListRevisions(ctx context.Context, submissionID string) ([]models.RevisionRequest, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+revisionColumns+` FROM revision_requests WHERE submission_id = $1 ORDER BY revision_number`, submissionID)
	if err != nil {
		return nil, queryError("list revisions", err)
	}
	defer rows.Close()

	revisions := []models.RevisionRequest{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, queryError("scan revision", err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate revisions", err)
	}
	return revisions, nil
}

func (t *pgTx) InsertRevision(ctx context.Context, rev *models.RevisionRequest) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO revision_requests (`+revisionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rev.ID, rev.SubmissionID, rev.RevisionNumber, rev.RequestedBy, rev.Reason,
		rev.RequestedAt, rev.RevisedURL, rev.CompletionNote, rev.CompletedAt,
	)
	if isUniqueViolation(err) {
		return errors.NewInvalidStateError(fmt.Sprintf(
			"revision %d already exists for submission %s", rev.RevisionNumber, rev.SubmissionID))
	}
	if err != nil {
		return errors.NewDatabaseInsertFailedError("insert revision request", err)
	}
	return nil
}

func (t *pgTx) UpdateRevision(ctx context.Context, rev *models.RevisionRequest) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE revision_requests
		SET revised_url = $2, completion_note = $3, completed_at = $4
		WHERE id = $1`, rev.ID, rev.RevisedURL, rev.CompletionNote, rev.CompletedAt)
	if err != nil {
		return queryError("update revision request", err)
	}
	return mustAffectOne(res, "revision request", rev.ID)
}
