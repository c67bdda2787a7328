// internal/workers/mission/review-submission/models.go
package reviewsubmission

import "mission-workers/internal/models"

type Input struct {
	SubmissionID string                 `json:"submissionId"`
	RequesterID  string                 `json:"requesterId"`
	Decision     models.DecisionPayload `json:"decision"`
}

type Output struct {
	SubmissionID  string                   `json:"submissionId"`
	Decision      string                   `json:"decision"`
	ReviewStatus  models.ReviewStatus      `json:"reviewStatus"`
	RevisionCount int                      `json:"revisionCount"`
	Submission    models.MissionSubmission `json:"submission"`
}
