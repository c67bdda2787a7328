// Package missions coordinates the campaign mission lifecycle: selection of
// applicants, mission submission, review with revisions and portfolio
// recording.
package missions

import (
	"context"

	"mission-workers/internal/models"
)

// Store opens one transaction per unit of work and serves the read projections.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	// ResolveSubmission reads a submission's application and campaign without
	// locking. NOT_FOUND when the submission does not exist.
	ResolveSubmission(ctx context.Context, submissionID string) (*models.SubmissionRef, error)

	ListCampaignSubmissions(ctx context.Context, campaignID string) ([]models.CampaignSubmission, error)
	ListMissionHistory(ctx context.Context, influencerID string) ([]models.MissionHistoryItem, error)
	CampaignStatistics(ctx context.Context, campaignID string) (*models.CampaignStatistics, error)
}

// Tx is the transactional view of the store. Lock* methods hold the row until
// the transaction ends and return NOT_FOUND when it does not exist. A
// transaction that locks both rows takes the application before the submission.
type Tx interface {
	LockApplication(ctx context.Context, applicationID string) (*models.ApplicationRecord, error)
	UpdateApplicationStatus(ctx context.Context, app *models.ApplicationRecord) error

	LockSubmission(ctx context.Context, submissionID string) (*models.MissionSubmission, error)
	// LockSubmissionForApplication returns nil, nil when the application has no submission yet.
	LockSubmissionForApplication(ctx context.Context, applicationID string) (*models.MissionSubmission, error)
	InsertSubmission(ctx context.Context, sub *models.MissionSubmission) error
	UpdateSubmission(ctx context.Context, sub *models.MissionSubmission) error

	// ListRevisions returns revision requests in ascending revision number.
	ListRevisions(ctx context.Context, submissionID string) ([]models.RevisionRequest, error)
	InsertRevision(ctx context.Context, rev *models.RevisionRequest) error
	UpdateRevision(ctx context.Context, rev *models.RevisionRequest) error

	PortfolioExists(ctx context.Context, applicationID string) (bool, error)
	// InsertPortfolioEntry reports false when an entry for the application already exists.
	InsertPortfolioEntry(ctx context.Context, entry *models.PortfolioEntry) (bool, error)
}

// CampaignDirectory resolves campaign ownership and snapshot data.
type CampaignDirectory interface {
	GetCampaign(ctx context.Context, campaignID string) (*models.CampaignSnapshot, error)
}

// InfluencerDirectory resolves an influencer's email address; "" means none on file.
type InfluencerDirectory interface {
	ContactEmail(ctx context.Context, influencerID string) (string, error)
}

type NotificationGateway interface {
	Send(ctx context.Context, recipientID string, kind models.NotificationKind, payload map[string]interface{}) error
}

type EmailGateway interface {
	Send(ctx context.Context, address string, template models.EmailTemplate, variables map[string]string) error
}

// StatsCache holds computed campaign statistics between mutations. Get also
// returns the campaign's generation; Set drops stats computed under a
// generation that Invalidate has since moved past.
type StatsCache interface {
	Get(ctx context.Context, campaignID string) (stats *models.CampaignStatistics, generation int64, ok bool)
	Set(ctx context.Context, stats *models.CampaignStatistics, generation int64)
	Invalidate(ctx context.Context, campaignID string)
}

// PortfolioIndex is the search-side copy of portfolio entries.
type PortfolioIndex interface {
	Index(ctx context.Context, entry *models.PortfolioEntry) error
	Search(ctx context.Context, query models.PortfolioQuery) ([]models.PortfolioEntry, error)
}

// Classifier maps a content URL to a platform tag.
type Classifier interface {
	Classify(rawURL string) string
}
