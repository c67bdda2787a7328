// internal/workers/selection/reject-applicants/models.go
package rejectapplicants

import "mission-workers/internal/models"

type Input struct {
	CampaignID     string   `json:"campaignId"`
	RequesterID    string   `json:"requesterId"`
	ApplicationIDs []string `json:"applicationIds"`
}

type Output struct {
	models.BatchResult
}
