// internal/models/notification.go
package models

// NotificationKind is the push notice sent to an influencer.
type NotificationKind string

const (
	NotificationSelected          NotificationKind = "selected"
	NotificationRejected          NotificationKind = "rejected"
	NotificationRevisionRequested NotificationKind = "revision-requested"
	NotificationApproved          NotificationKind = "approved"
)

// EmailTemplate names a built-in email template.
type EmailTemplate string

const (
	EmailRevisionRequested EmailTemplate = "revision-requested"
	EmailMissionApproved   EmailTemplate = "mission-approved"
)

type NotificationTemplate struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"htmlBody,omitempty"`
	Version  string `json:"version"`
}
