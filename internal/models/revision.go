// internal/models/revision.go
package models

import "time"

// Completion notes written when an open revision request is closed.
const (
	CompletionResubmitted = "resubmitted"
	CompletionApproved    = "approved"
)

// RevisionRequest is one client request to revise a submission.
type RevisionRequest struct {
	ID             string     `json:"id"`
	SubmissionID   string     `json:"submissionId"`
	RevisionNumber int        `json:"revisionNumber"`
	RequestedBy    string     `json:"requestedBy"`
	Reason         string     `json:"reason"`
	RequestedAt    time.Time  `json:"requestedAt"`
	RevisedURL     string     `json:"revisedUrl,omitempty"`
	CompletionNote string     `json:"completionNote,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

func (r *RevisionRequest) IsOpen() bool {
	return r.CompletedAt == nil
}

// Complete closes the request with the content URL current at closing time.
func (r *RevisionRequest) Complete(revisedURL, note string, at time.Time) {
	r.RevisedURL = revisedURL
	r.CompletionNote = note
	r.CompletedAt = &at
}
