// internal/workers/mission/submit-mission/models.go
package submitmission

import "mission-workers/internal/models"

type Input struct {
	ApplicationID string `json:"applicationId"`
	InfluencerID  string `json:"influencerId"`
	ContentURL    string `json:"contentUrl"`
	Note          string `json:"note,omitempty"`
}

type Output struct {
	SubmissionID string                   `json:"submissionId"`
	Platform     string                   `json:"platform"`
	ReviewStatus models.ReviewStatus      `json:"reviewStatus"`
	Submission   models.MissionSubmission `json:"submission"`
}
