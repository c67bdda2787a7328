package missions

import (
	"context"
	"fmt"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/metrics"
	"mission-workers/internal/models"
)

// SelectionCoordinator moves batches of applications to selected or rejected.
// Every item is its own transaction.
type SelectionCoordinator struct {
	store     Store
	campaigns CampaignDirectory
	notifier  *notifier
	stats     StatsCache
	now       Clock
	logger    logger.Logger
}

func NewSelectionCoordinator(deps Dependencies) *SelectionCoordinator {
	log := deps.logger().WithFields(map[string]interface{}{"component": "selection"})
	return &SelectionCoordinator{
		store:     deps.Store,
		campaigns: deps.Campaigns,
		notifier:  deps.notifier(log),
		stats:     deps.Stats,
		now:       deps.clock(),
		logger:    log,
	}
}

// SelectMany moves pending applications of campaignID to selected.
func (c *SelectionCoordinator) SelectMany(ctx context.Context, campaignID string, applicationIDs []string, requesterID string) (*models.BatchResult, error) {
	return c.transitionMany(ctx, "select", campaignID, applicationIDs, requesterID, models.ApplicationSelected, models.NotificationSelected)
}

// RejectMany moves pending or selected applications of campaignID to rejected.
func (c *SelectionCoordinator) RejectMany(ctx context.Context, campaignID string, applicationIDs []string, requesterID string) (*models.BatchResult, error) {
	return c.transitionMany(ctx, "reject", campaignID, applicationIDs, requesterID, models.ApplicationRejected, models.NotificationRejected)
}

func (c *SelectionCoordinator) transitionMany(
	ctx context.Context,
	operation, campaignID string,
	applicationIDs []string,
	requesterID string,
	to models.ApplicationStatus,
	kind models.NotificationKind,
) (*models.BatchResult, error) {
	campaign, err := c.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.OwnerID != requesterID {
		return nil, errors.NewForbiddenError(fmt.Sprintf("user %s does not own campaign %s", requesterID, campaignID))
	}

	result := models.NewBatchResult(len(applicationIDs))
	seen := make(map[string]struct{}, len(applicationIDs))

	for _, id := range applicationIDs {
		if _, dup := seen[id]; dup {
			c.recordFailure(result, operation, id, errors.NewValidationFailedError("duplicate application id in batch"))
			continue
		}
		seen[id] = struct{}{}

		app, err := c.transitionOne(ctx, campaignID, id, to)
		if err != nil {
			c.recordFailure(result, operation, id, err)
			continue
		}

		result.AddSuccess(id)
		metrics.ApplicationTransitions.WithLabelValues(string(to)).Inc()

		c.notifier.notify(ctx, app.InfluencerID, kind, map[string]interface{}{
			"applicationId": app.ID,
			"campaignId":    campaign.ID,
			"campaignTitle": campaign.Title,
		})
	}

	if result.SuccessCount > 0 && c.stats != nil {
		c.stats.Invalidate(ctx, campaignID)
	}

	c.logger.Info("batch processed", map[string]interface{}{
		"operation":      operation,
		"campaignId":     campaignID,
		"totalRequested": result.TotalRequested,
		"successCount":   result.SuccessCount,
		"failCount":      result.FailCount,
	})
	return result, nil
}

func (c *SelectionCoordinator) transitionOne(ctx context.Context, campaignID, applicationID string, to models.ApplicationStatus) (*models.ApplicationRecord, error) {
	var out *models.ApplicationRecord
	err := c.store.InTx(ctx, func(tx Tx) error {
		app, err := tx.LockApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.CampaignID != campaignID {
			return errors.NewNotFoundError("application", applicationID).
				WithMetadata("campaignId", campaignID)
		}
		if err := app.TransitionTo(to, c.now()); err != nil {
			return err
		}
		if err := tx.UpdateApplicationStatus(ctx, app); err != nil {
			return err
		}
		out = app
		return nil
	})
	return out, err
}

func (c *SelectionCoordinator) recordFailure(result *models.BatchResult, operation, id string, err error) {
	stdErr := errors.AsStandardError(err)
	reason := stdErr.Message
	if stdErr.Details != "" {
		reason = stdErr.Details
	}
	if stdErr.Code == errors.ErrCodeNotFound {
		reason = fmt.Sprintf("application %s not found in campaign", id)
	}
	result.AddFailure(id, string(stdErr.Code), reason)
	metrics.BatchItemsFailed.WithLabelValues(operation, string(stdErr.Code)).Inc()

	c.logger.Warn("batch item failed", map[string]interface{}{
		"operation":     operation,
		"applicationId": id,
		"errorCode":     string(stdErr.Code),
		"reason":        reason,
	})
}
