package missions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/metrics"
	"mission-workers/internal/models"
)

// ReviewCoordinator applies a campaign owner's decision to a submission.
type ReviewCoordinator struct {
	store     Store
	campaigns CampaignDirectory
	portfolio PortfolioIndex
	recorder  PortfolioRecorder
	notifier  *notifier
	stats     StatsCache
	now       Clock
	logger    logger.Logger
}

func NewReviewCoordinator(deps Dependencies) *ReviewCoordinator {
	log := deps.logger().WithFields(map[string]interface{}{"component": "review"})
	return &ReviewCoordinator{
		store:     deps.Store,
		campaigns: deps.Campaigns,
		portfolio: deps.Portfolio,
		notifier:  deps.notifier(log),
		stats:     deps.Stats,
		now:       deps.clock(),
		logger:    log,
	}
}

// Review approves the submission or requests a revision. The campaign is
// resolved before the transaction, which then locks the application before
// the submission like Submit does. Notifications, emails and indexing run
// after commit and never fail the call.
func (c *ReviewCoordinator) Review(ctx context.Context, submissionID, reviewerID string, decision models.Decision) (*models.MissionSubmission, error) {
	if decision == nil {
		return nil, errors.NewValidationFailedError("decision is required")
	}
	if err := decision.Validate(); err != nil {
		return nil, err
	}

	ref, err := c.store.ResolveSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	campaign, err := c.campaigns.GetCampaign(ctx, ref.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.OwnerID != reviewerID {
		return nil, errors.NewForbiddenError(fmt.Sprintf("user %s does not own campaign %s", reviewerID, campaign.ID))
	}

	var (
		out   *models.MissionSubmission
		after effects
	)
	err = c.store.InTx(ctx, func(tx Tx) error {
		app, err := tx.LockApplication(ctx, ref.ApplicationID)
		if err != nil {
			return err
		}
		sub, err := tx.LockSubmission(ctx, submissionID)
		if err != nil {
			return err
		}
		if sub.IsApproved() {
			return errors.NewInvalidStateError(fmt.Sprintf("submission %s is already approved", sub.ID)).
				WithMetadata("submissionId", sub.ID)
		}

		switch d := decision.(type) {
		case models.Approve:
			err = c.approve(ctx, tx, sub, app, campaign, d, &after)
		case models.RequestRevision:
			err = c.requestRevision(ctx, tx, sub, app, campaign, reviewerID, d, &after)
		default:
			err = errors.NewValidationFailedError(fmt.Sprintf("unsupported decision %q", decision.Kind()))
		}
		if err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewDecisions.WithLabelValues(decision.Kind()).Inc()
	if out.IsApproved() {
		metrics.ApplicationTransitions.WithLabelValues(string(models.ApplicationCompleted)).Inc()
	}
	if c.stats != nil {
		c.stats.Invalidate(ctx, campaign.ID)
	}
	after.run(ctx)

	c.logger.Info("submission reviewed", map[string]interface{}{
		"submissionId": out.ID,
		"decision":     decision.Kind(),
		"reviewStatus": string(out.ReviewStatus),
	})
	return out, nil
}

func (c *ReviewCoordinator) approve(
	ctx context.Context,
	tx Tx,
	sub *models.MissionSubmission,
	app *models.ApplicationRecord,
	campaign *models.CampaignSnapshot,
	d models.Approve,
	after *effects,
) error {
	now := c.now()

	sub.ReviewStatus = models.ReviewApproved
	sub.ReviewedAt = &now
	sub.Feedback = d.Feedback
	if err := tx.UpdateSubmission(ctx, sub); err != nil {
		return err
	}

	revisions, err := tx.ListRevisions(ctx, sub.ID)
	if err != nil {
		return err
	}
	for i := range revisions {
		if !revisions[i].IsOpen() {
			continue
		}
		revisions[i].Complete(sub.ContentURL, models.CompletionApproved, now)
		if err := tx.UpdateRevision(ctx, &revisions[i]); err != nil {
			return err
		}
	}

	if err := app.TransitionTo(models.ApplicationCompleted, now); err != nil {
		return err
	}
	if err := tx.UpdateApplicationStatus(ctx, app); err != nil {
		return err
	}

	exists, err := tx.PortfolioExists(ctx, app.ID)
	if err != nil {
		return err
	}
	if exists {
		c.logger.Warn("portfolio entry already recorded, skipping", map[string]interface{}{
			"applicationId": app.ID,
		})
	} else {
		entry := c.recorder.Record(sub, app, campaign, d, now)
		inserted, err := tx.InsertPortfolioEntry(ctx, entry)
		if err != nil {
			return err
		}
		if inserted {
			after.add(func(ctx context.Context) { c.indexPortfolio(ctx, entry) })
		}
	}

	influencerID := app.InfluencerID
	after.add(func(ctx context.Context) {
		c.notifier.notify(ctx, influencerID, models.NotificationApproved, map[string]interface{}{
			"applicationId": app.ID,
			"submissionId":  sub.ID,
			"campaignId":    campaign.ID,
			"campaignTitle": campaign.Title,
		})
		c.notifier.email(ctx, influencerID, models.EmailMissionApproved, map[string]string{
			"campaignTitle": campaign.Title,
			"contentUrl":    sub.ContentURL,
			"feedback":      d.Feedback,
		})
	})
	return nil
}

func (c *ReviewCoordinator) requestRevision(
	ctx context.Context,
	tx Tx,
	sub *models.MissionSubmission,
	app *models.ApplicationRecord,
	campaign *models.CampaignSnapshot,
	reviewerID string,
	d models.RequestRevision,
	after *effects,
) error {
	if sub.ReviewStatus == models.ReviewRevisionRequested {
		return errors.NewInvalidStateError(fmt.Sprintf(
			"submission %s already has an open revision request awaiting resubmission", sub.ID,
		)).WithMetadata("submissionId", sub.ID)
	}

	now := c.now()

	revisions, err := tx.ListRevisions(ctx, sub.ID)
	if err != nil {
		return err
	}
	rev := &models.RevisionRequest{
		ID:             uuid.NewString(),
		SubmissionID:   sub.ID,
		RevisionNumber: len(revisions) + 1,
		RequestedBy:    reviewerID,
		Reason:         strings.TrimSpace(d.Reason),
		RequestedAt:    now,
	}
	if err := tx.InsertRevision(ctx, rev); err != nil {
		return err
	}

	sub.ReviewStatus = models.ReviewRevisionRequested
	sub.ReviewedAt = &now
	sub.Feedback = d.Feedback
	sub.RevisionCount++
	if err := tx.UpdateSubmission(ctx, sub); err != nil {
		return err
	}

	influencerID := app.InfluencerID
	after.add(func(ctx context.Context) {
		c.notifier.notify(ctx, influencerID, models.NotificationRevisionRequested, map[string]interface{}{
			"applicationId":  app.ID,
			"submissionId":   sub.ID,
			"campaignId":     campaign.ID,
			"revisionNumber": rev.RevisionNumber,
			"reason":         rev.Reason,
		})
		c.notifier.email(ctx, influencerID, models.EmailRevisionRequested, map[string]string{
			"campaignTitle":  campaign.Title,
			"reason":         rev.Reason,
			"feedback":       d.Feedback,
			"revisionNumber": strconv.Itoa(rev.RevisionNumber),
		})
	})
	return nil
}

func (c *ReviewCoordinator) indexPortfolio(ctx context.Context, entry *models.PortfolioEntry) {
	if c.portfolio == nil {
		return
	}
	if err := c.portfolio.Index(ctx, entry); err != nil {
		c.logger.Warn("portfolio indexing failed", map[string]interface{}{
			"portfolioEntryId": entry.ID,
			"applicationId":    entry.ApplicationID,
			"error":            err,
		})
	}
}

