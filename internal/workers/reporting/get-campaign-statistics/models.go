// internal/workers/reporting/get-campaign-statistics/models.go
package getcampaignstatistics

import "mission-workers/internal/models"

type Input struct {
	CampaignID  string `json:"campaignId"`
	RequesterID string `json:"requesterId"`
}

type Output struct {
	models.CampaignStatistics
}
