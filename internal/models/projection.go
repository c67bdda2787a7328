// internal/models/projection.go
package models

import "time"

// CampaignSubmission is one row of a campaign's submission listing.
type CampaignSubmission struct {
	Submission   MissionSubmission `json:"submission"`
	Application  ApplicationRecord `json:"application"`
	Revisions    []RevisionRequest `json:"revisions"`
	OpenRevision bool              `json:"openRevision"`
}

// MissionHistoryItem is one application of an influencer that reached selection.
type MissionHistoryItem struct {
	ApplicationID    string             `json:"applicationId"`
	CampaignID       string             `json:"campaignId"`
	CampaignTitle    string             `json:"campaignTitle"`
	Status           ApplicationStatus  `json:"status"`
	Submission       *MissionSubmission `json:"submission,omitempty"`
	PortfolioEntryID string             `json:"portfolioEntryId,omitempty"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// CampaignStatistics summarises a campaign's applications and submissions.
type CampaignStatistics struct {
	CampaignID            string                    `json:"campaignId"`
	Applications          map[ApplicationStatus]int `json:"applications"`
	TotalApplications     int                       `json:"totalApplications"`
	Submissions           map[ReviewStatus]int      `json:"submissions"`
	TotalSubmissions      int                       `json:"totalSubmissions"`
	TotalRevisionRequests int                       `json:"totalRevisionRequests"`
	OpenRevisionRequests  int                       `json:"openRevisionRequests"`
	CompletionRate        float64                   `json:"completionRate"`
	GeneratedAt           time.Time                 `json:"generatedAt"`
}

// ComputeCompletionRate is completed / (selected + completed), 0 when nobody was selected.
func (s *CampaignStatistics) ComputeCompletionRate() {
	completed := s.Applications[ApplicationCompleted]
	denom := s.Applications[ApplicationSelected] + completed
	if denom == 0 {
		s.CompletionRate = 0
		return
	}
	s.CompletionRate = float64(completed) / float64(denom)
}
