package store

import (
	"context"
	"database/sql"

	"mission-workers/internal/models"
)

func (s *Store) ListCampaignSubmissions(ctx context.Context, campaignID string) ([]models.CampaignSubmission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.application_id, s.content_url, s.platform, s.note, s.review_status,
		       s.feedback, s.revision_count, s.submitted_at, s.reviewed_at,
		       a.id, a.campaign_id, a.influencer_id, a.status, a.created_at, a.updated_at
		FROM mission_submissions s
		JOIN campaign_applications a ON a.id = s.application_id
		WHERE a.campaign_id = $1
		ORDER BY s.submitted_at DESC, s.id`, campaignID)
	if err != nil {
		return nil, queryError("list campaign submissions", err)
	}
	defer rows.Close()

	items := []models.CampaignSubmission{}
	index := map[string]int{}
	for rows.Next() {
		var (
			item       models.CampaignSubmission
			reviewedAt sql.NullTime
		)
		sub, app := &item.Submission, &item.Application
		if err := rows.Scan(
			&sub.ID, &sub.ApplicationID, &sub.ContentURL, &sub.Platform, &sub.Note, &sub.ReviewStatus,
			&sub.Feedback, &sub.RevisionCount, &sub.SubmittedAt, &reviewedAt,
			&app.ID, &app.CampaignID, &app.InfluencerID, &app.Status, &app.CreatedAt, &app.UpdatedAt,
		); err != nil {
			return nil, queryError("scan campaign submission", err)
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			sub.ReviewedAt = &t
		}
		item.Revisions = []models.RevisionRequest{}
		index[sub.ID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate campaign submissions", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	revRows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.submission_id, r.revision_number, r.requested_by, r.reason, r.requested_at,
		       r.revised_url, r.completion_note, r.completed_at
		FROM revision_requests r
		JOIN mission_submissions s ON s.id = r.submission_id
		JOIN campaign_applications a ON a.id = s.application_id
		WHERE a.campaign_id = $1
		ORDER BY r.submission_id, r.revision_number`, campaignID)
	if err != nil {
		return nil, queryError("list campaign revisions", err)
	}
	defer revRows.Close()

	for revRows.Next() {
		rev, err := scanRevision(revRows)
		if err != nil {
			return nil, queryError("scan revision", err)
		}
		if i, ok := index[rev.SubmissionID]; ok {
			items[i].Revisions = append(items[i].Revisions, rev)
		}
	}
	if err := revRows.Err(); err != nil {
		return nil, queryError("iterate campaign revisions", err)
	}
	return items, nil
}

func (s *Store) ListMissionHistory(ctx context.Context, influencerID string) ([]models.MissionHistoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.campaign_id, c.title, a.status, a.updated_at,
		       s.id, s.content_url, s.platform, s.note, s.review_status, s.feedback,
		       s.revision_count, s.submitted_at, s.reviewed_at,
		       p.id
		FROM campaign_applications a
		JOIN campaigns c ON c.id = a.campaign_id
		LEFT JOIN mission_submissions s ON s.application_id = a.id
		LEFT JOIN portfolio_entries p ON p.application_id = a.id
		WHERE a.influencer_id = $1 AND a.status IN ('selected', 'completed')
		ORDER BY a.updated_at DESC, a.id`, influencerID)
	if err != nil {
		return nil, queryError("list mission history", err)
	}
	defer rows.Close()

	items := []models.MissionHistoryItem{}
	for rows.Next() {
		var (
			item                                      models.MissionHistoryItem
			subID, contentURL, platform, note, status sql.NullString
			feedback, portfolioID                     sql.NullString
			revisionCount                             sql.NullInt64
			submittedAt, reviewedAt                   sql.NullTime
		)
		if err := rows.Scan(
			&item.ApplicationID, &item.CampaignID, &item.CampaignTitle, &item.Status, &item.UpdatedAt,
			&subID, &contentURL, &platform, &note, &status, &feedback,
			&revisionCount, &submittedAt, &reviewedAt,
			&portfolioID,
		); err != nil {
			return nil, queryError("scan mission history", err)
		}
		if subID.Valid {
			sub := &models.MissionSubmission{
				ID:            subID.String,
				ApplicationID: item.ApplicationID,
				ContentURL:    contentURL.String,
				Platform:      platform.String,
				Note:          note.String,
				ReviewStatus:  models.ReviewStatus(status.String),
				Feedback:      feedback.String,
				RevisionCount: int(revisionCount.Int64),
				SubmittedAt:   submittedAt.Time,
			}
			if reviewedAt.Valid {
				t := reviewedAt.Time
				sub.ReviewedAt = &t
			}
			item.Submission = sub
		}
		item.PortfolioEntryID = portfolioID.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("iterate mission history", err)
	}
	return items, nil
}

func (s *Store) CampaignStatistics(ctx context.Context, campaignID string) (*models.CampaignStatistics, error) {
	stats := &models.CampaignStatistics{
		CampaignID:   campaignID,
		Applications: map[models.ApplicationStatus]int{},
		Submissions:  map[models.ReviewStatus]int{},
	}

	appRows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM campaign_applications
		WHERE campaign_id = $1
		GROUP BY status`, campaignID)
	if err != nil {
		return nil, queryError("count applications", err)
	}
	defer appRows.Close()
	for appRows.Next() {
		var (
			status models.ApplicationStatus
			n      int
		)
		if err := appRows.Scan(&status, &n); err != nil {
			return nil, queryError("scan application count", err)
		}
		stats.Applications[status] = n
		stats.TotalApplications += n
	}
	if err := appRows.Err(); err != nil {
		return nil, queryError("iterate application counts", err)
	}

	subRows, err := s.db.QueryContext(ctx, `
		SELECT s.review_status, COUNT(*)
		FROM mission_submissions s
		JOIN campaign_applications a ON a.id = s.application_id
		WHERE a.campaign_id = $1
		GROUP BY s.review_status`, campaignID)
	if err != nil {
		return nil, queryError("count submissions", err)
	}
	defer subRows.Close()
	for subRows.Next() {
		var (
			status models.ReviewStatus
			n      int
		)
		if err := subRows.Scan(&status, &n); err != nil {
			return nil, queryError("scan submission count", err)
		}
		stats.Submissions[status] = n
		stats.TotalSubmissions += n
	}
	if err := subRows.Err(); err != nil {
		return nil, queryError("iterate submission counts", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE r.completed_at IS NULL)
		FROM revision_requests r
		JOIN mission_submissions s ON s.id = r.submission_id
		JOIN campaign_applications a ON a.id = s.application_id
		WHERE a.campaign_id = $1`, campaignID).
		Scan(&stats.TotalRevisionRequests, &stats.OpenRevisionRequests)
	if err != nil {
		return nil, queryError("count revision requests", err)
	}
	return stats, nil
}
