package missions

import (
	"context"
	"time"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/metrics"
	"mission-workers/internal/models"
)

// effects collects side effects during a transaction. They run only after
// the transaction has committed, and their failures are logged and dropped.
type effects struct {
	pending []func(ctx context.Context)
}

func (e *effects) add(fn func(ctx context.Context)) {
	e.pending = append(e.pending, fn)
}

func (e *effects) run(ctx context.Context) {
	for _, fn := range e.pending {
		fn(ctx)
	}
	e.pending = nil
}

// notifier wraps the gateways with best-effort semantics.
type notifier struct {
	notifications NotificationGateway
	emails        EmailGateway
	influencers   InfluencerDirectory
	logger        logger.Logger
}

func (n *notifier) notify(ctx context.Context, recipientID string, kind models.NotificationKind, payload map[string]interface{}) {
	if n.notifications == nil {
		return
	}
	if err := n.notifications.Send(ctx, recipientID, kind, payload); err != nil {
		n.sideEffectFailed(string(kind), "notification", err, map[string]interface{}{"recipientId": recipientID})
	}
}

func (n *notifier) email(ctx context.Context, influencerID string, template models.EmailTemplate, vars map[string]string) {
	if n.emails == nil || n.influencers == nil {
		return
	}
	address, err := n.influencers.ContactEmail(ctx, influencerID)
	if err != nil {
		n.sideEffectFailed(string(template), "email", err, map[string]interface{}{"influencerId": influencerID})
		return
	}
	if address == "" {
		n.logger.Warn("no email address on file, skipping email", map[string]interface{}{
			"influencerId": influencerID,
			"template":     string(template),
		})
		return
	}
	if err := n.emails.Send(ctx, address, template, vars); err != nil {
		n.sideEffectFailed(string(template), "email", err, map[string]interface{}{"influencerId": influencerID})
	}
}

func (n *notifier) sideEffectFailed(kind, channel string, err error, fields map[string]interface{}) {
	metrics.SideEffectsDispatched.WithLabelValues(kind, channel, "enqueue_failed").Inc()
	stdErr := errors.NewSideEffectFailedError(kind, err)
	fields["errorCode"] = string(stdErr.Code)
	fields["error"] = stdErr.Details
	fields["channel"] = channel
	n.logger.Warn("side effect failed", fields)
}

// Clock returns the current time; tests pin it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
