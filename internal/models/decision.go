// internal/models/decision.go
package models

import (
	"fmt"
	"strings"

	"mission-workers/internal/common/errors"
)

const (
	DecisionApprove         = "approve"
	DecisionRequestRevision = "request_revision"
)

// Decision is either Approve or RequestRevision.
type Decision interface {
	Kind() string
	Validate() error
}

type Approve struct {
	Feedback string
	Rating   *int
}

func (Approve) Kind() string { return DecisionApprove }

// Validate rejects a rating outside 1..5. A nil rating is allowed.
func (a Approve) Validate() error {
	if a.Rating != nil && (*a.Rating < 1 || *a.Rating > 5) {
		return errors.NewValidationFailedError(fmt.Sprintf("rating must be between 1 and 5, got %d", *a.Rating))
	}
	return nil
}

type RequestRevision struct {
	Reason   string
	Feedback string
}

func (RequestRevision) Kind() string { return DecisionRequestRevision }

// Validate requires a reason that is not blank after trimming.
func (r RequestRevision) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return errors.NewValidationFailedError("revision request requires a non-blank reason")
	}
	return nil
}

// DecisionPayload is the wire form of a Decision.
type DecisionPayload struct {
	Type     string `json:"type"`
	Reason   string `json:"reason,omitempty"`
	Feedback string `json:"feedback,omitempty"`
	Rating   *int   `json:"rating,omitempty"`
}

// Decode resolves the payload into a trimmed, validated Decision.
func (p DecisionPayload) Decode() (Decision, error) {
	var d Decision
	switch p.Type {
	case DecisionApprove:
		d = Approve{Feedback: strings.TrimSpace(p.Feedback), Rating: p.Rating}
	case DecisionRequestRevision:
		d = RequestRevision{Reason: strings.TrimSpace(p.Reason), Feedback: strings.TrimSpace(p.Feedback)}
	default:
		return nil, errors.NewValidationFailedError(fmt.Sprintf("unknown decision type %q", p.Type))
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
