package missions

import (
	"time"

	"github.com/google/uuid"

	"mission-workers/internal/models"
)

// PortfolioRecorder builds the portfolio snapshot of an approved submission.
// It does not look for existing entries; the review transaction does.
type PortfolioRecorder struct{}

func (PortfolioRecorder) Record(
	sub *models.MissionSubmission,
	app *models.ApplicationRecord,
	campaign *models.CampaignSnapshot,
	decision models.Approve,
	completedAt time.Time,
) *models.PortfolioEntry {
	return &models.PortfolioEntry{
		ID:               uuid.NewString(),
		ApplicationID:    app.ID,
		InfluencerID:     app.InfluencerID,
		CampaignID:       campaign.ID,
		CampaignTitle:    campaign.Title,
		CampaignCategory: campaign.Category,
		Platform:         sub.Platform,
		ContentURL:       sub.ContentURL,
		CompletedAt:      completedAt,
		Rating:           decision.Rating,
		ReviewText:       decision.Feedback,
		IsPublic:         true,
		IsFeatured:       false,
	}
}
