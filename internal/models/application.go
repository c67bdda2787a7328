// internal/models/application.go
package models

import (
	"fmt"
	"strings"
	"time"

	"mission-workers/internal/common/errors"
)

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationSelected  ApplicationStatus = "selected"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCompleted ApplicationStatus = "completed"
)

// allowedSources lists, per target status, the statuses it may be entered from.
var allowedSources = map[ApplicationStatus][]ApplicationStatus{
	ApplicationSelected:  {ApplicationPending},
	ApplicationRejected:  {ApplicationPending, ApplicationSelected},
	ApplicationCompleted: {ApplicationSelected},
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationSelected, ApplicationRejected, ApplicationCompleted:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is one of the forward paths
// pending->selected->completed or {pending,selected}->rejected.
func CanTransition(from, to ApplicationStatus) bool {
	for _, s := range allowedSources[to] {
		if s == from {
			return true
		}
	}
	return false
}

// RequiredPriorStatuses returns the statuses to may be entered from.
func RequiredPriorStatuses(to ApplicationStatus) []ApplicationStatus {
	return allowedSources[to]
}

func formatStatusSet(set []ApplicationStatus) string {
	names := make([]string, len(set))
	for i, s := range set {
		names[i] = string(s)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// ApplicationRecord is one influencer's candidacy for one campaign.
type ApplicationRecord struct {
	ID           string            `json:"id"`
	CampaignID   string            `json:"campaignId"`
	InfluencerID string            `json:"influencerId"`
	Status       ApplicationStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// TransitionTo moves the record to status to, or returns INVALID_STATE
// naming the required prior statuses.
func (a *ApplicationRecord) TransitionTo(to ApplicationStatus, now time.Time) error {
	if !CanTransition(a.Status, to) {
		return errors.NewInvalidStateError(fmt.Sprintf(
			"application %s must be in %s to become %s, current status is %s",
			a.ID, formatStatusSet(RequiredPriorStatuses(to)), to, a.Status,
		)).
			WithMetadata("applicationId", a.ID).
			WithMetadata("currentStatus", string(a.Status))
	}
	a.Status = to
	a.UpdatedAt = now
	return nil
}
