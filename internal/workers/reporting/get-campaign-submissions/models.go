// internal/workers/reporting/get-campaign-submissions/models.go
package getcampaignsubmissions

import "mission-workers/internal/models"

type Input struct {
	CampaignID  string `json:"campaignId"`
	RequesterID string `json:"requesterId"`
}

type Output struct {
	CampaignID  string                      `json:"campaignId"`
	Count       int                         `json:"count"`
	Submissions []models.CampaignSubmission `json:"submissions"`
}
