// internal/workers/selection/select-applicants/models.go
package selectapplicants

import "mission-workers/internal/models"

type Input struct {
	CampaignID     string   `json:"campaignId"`
	RequesterID    string   `json:"requesterId"`
	ApplicationIDs []string `json:"applicationIds"`
}

// Output flattens the batch result into the process variables.
type Output struct {
	models.BatchResult
}
