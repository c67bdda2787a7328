package missions

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/metrics"
	"mission-workers/internal/models"
)

// SubmitCommand carries a first submission or a resubmission.
type SubmitCommand struct {
	ApplicationID string
	InfluencerID  string
	ContentURL    string
	Note          string
}

// SubmissionCoordinator accepts mission content from the selected influencer.
type SubmissionCoordinator struct {
	store      Store
	classifier Classifier
	stats      StatsCache
	now        Clock
	logger     logger.Logger
}

func NewSubmissionCoordinator(deps Dependencies) *SubmissionCoordinator {
	return &SubmissionCoordinator{
		store:      deps.Store,
		classifier: deps.classifier(),
		stats:      deps.Stats,
		now:        deps.clock(),
		logger:     deps.logger().WithFields(map[string]interface{}{"component": "submission"}),
	}
}

// Submit creates the application's submission or, when one exists and is not
// approved, replaces its content and reopens it for review. Resubmitting a
// submission with a requested revision closes the latest open revision request.
func (c *SubmissionCoordinator) Submit(ctx context.Context, cmd SubmitCommand) (*models.MissionSubmission, error) {
	contentURL := strings.TrimSpace(cmd.ContentURL)
	if err := validateContentURL(contentURL); err != nil {
		return nil, err
	}

	var (
		out        *models.MissionSubmission
		campaignID string
		resubmit   bool
	)
	err := c.store.InTx(ctx, func(tx Tx) error {
		app, err := tx.LockApplication(ctx, cmd.ApplicationID)
		if err != nil {
			return err
		}
		if app.InfluencerID != cmd.InfluencerID {
			return errors.NewForbiddenError(fmt.Sprintf("application %s does not belong to influencer %s", app.ID, cmd.InfluencerID))
		}
		if app.Status != models.ApplicationSelected {
			return errors.NewInvalidStateError(fmt.Sprintf(
				"application %s must be in {selected} to submit, current status is %s", app.ID, app.Status,
			)).WithMetadata("applicationId", app.ID)
		}
		campaignID = app.CampaignID

		now := c.now()
		platformTag := c.classifier.Classify(contentURL)

		sub, err := tx.LockSubmissionForApplication(ctx, app.ID)
		if err != nil {
			return err
		}

		if sub == nil {
			sub = &models.MissionSubmission{
				ID:            uuid.NewString(),
				ApplicationID: app.ID,
				ContentURL:    contentURL,
				Platform:      platformTag,
				Note:          cmd.Note,
				ReviewStatus:  models.ReviewPending,
				SubmittedAt:   now,
			}
			if err := tx.InsertSubmission(ctx, sub); err != nil {
				return err
			}
			out = sub
			return nil
		}

		if sub.IsApproved() {
			return errors.NewInvalidStateError(fmt.Sprintf(
				"submission %s is approved and can no longer change", sub.ID,
			)).WithMetadata("submissionId", sub.ID)
		}

		resubmit = true
		wasRevisionRequested := sub.ReviewStatus == models.ReviewRevisionRequested

		sub.ContentURL = contentURL
		sub.Platform = platformTag
		sub.Note = cmd.Note
		sub.ReviewStatus = models.ReviewPending
		sub.ReviewedAt = nil
		sub.SubmittedAt = now
		if err := tx.UpdateSubmission(ctx, sub); err != nil {
			return err
		}

		if wasRevisionRequested {
			if err := closeLatestOpenRevision(ctx, tx, sub.ID, contentURL, now); err != nil {
				return err
			}
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := "initial"
	if resubmit {
		kind = "resubmission"
	}
	metrics.SubmissionsReceived.WithLabelValues(kind).Inc()
	if c.stats != nil {
		c.stats.Invalidate(ctx, campaignID)
	}

	c.logger.Info("mission submitted", map[string]interface{}{
		"applicationId": out.ApplicationID,
		"submissionId":  out.ID,
		"platform":      out.Platform,
		"kind":          kind,
	})
	return out, nil
}

func closeLatestOpenRevision(ctx context.Context, tx Tx, submissionID, contentURL string, now time.Time) error {
	revisions, err := tx.ListRevisions(ctx, submissionID)
	if err != nil {
		return err
	}
	for i := len(revisions) - 1; i >= 0; i-- {
		if revisions[i].IsOpen() {
			revisions[i].Complete(contentURL, models.CompletionResubmitted, now)
			return tx.UpdateRevision(ctx, &revisions[i])
		}
	}
	return nil
}

func validateContentURL(raw string) error {
	if raw == "" {
		return errors.NewValidationFailedError("content url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NewValidationFailedError(fmt.Sprintf("content url %q must be an absolute http(s) url", raw))
	}
	return nil
}
