// internal/models/submission.go
package models

import "time"

type ReviewStatus string

const (
	ReviewPending           ReviewStatus = "pending"
	ReviewApproved          ReviewStatus = "approved"
	ReviewRevisionRequested ReviewStatus = "revision_requested"
)

// MissionSubmission is the proof-of-work content for one application.
type MissionSubmission struct {
	ID            string       `json:"id"`
	ApplicationID string       `json:"applicationId"`
	ContentURL    string       `json:"contentUrl"`
	Platform      string       `json:"platform"`
	Note          string       `json:"note,omitempty"`
	ReviewStatus  ReviewStatus `json:"reviewStatus"`
	Feedback      string       `json:"feedback,omitempty"`
	RevisionCount int          `json:"revisionCount"`
	SubmittedAt   time.Time    `json:"submittedAt"`
	ReviewedAt    *time.Time   `json:"reviewedAt,omitempty"`
}

// SubmissionRef places a submission under its application and campaign.
type SubmissionRef struct {
	SubmissionID  string
	ApplicationID string
	CampaignID    string
}

func (s *MissionSubmission) IsApproved() bool {
	return s.ReviewStatus == ReviewApproved
}
