// internal/workers/reporting/get-mission-history/models.go
package getmissionhistory

import "mission-workers/internal/models"

type Input struct {
	InfluencerID string `json:"influencerId"`
}

type Output struct {
	InfluencerID string                      `json:"influencerId"`
	Count        int                         `json:"count"`
	Missions     []models.MissionHistoryItem `json:"missions"`
}
