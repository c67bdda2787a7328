package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/metrics"
	"mission-workers/internal/models"
)

// Queue pushes envelopes onto a Redis list consumed by Processor.
type Queue struct {
	redis redis.Cmdable
	key   string
	now   func() time.Time
}

func NewQueue(rdb redis.Cmdable, key string) *Queue {
	return &Queue{
		redis: rdb,
		key:   key,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Notifications returns the queue as a missions.NotificationGateway.
func (q *Queue) Notifications() *NotificationQueue {
	return &NotificationQueue{q: q}
}

// Emails returns the queue as a missions.EmailGateway.
func (q *Queue) Emails() *EmailQueue {
	return &EmailQueue{q: q}
}

// Len reports how many envelopes are waiting.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.redis.LLen(ctx, q.key).Result()
}

func (q *Queue) enqueue(ctx context.Context, env *Envelope) error {
	env.ID = uuid.New().String()
	env.EnqueuedAt = q.now()

	raw, err := json.Marshal(env)
	if err != nil {
		return errors.NewSideEffectFailedError(env.Kind, err)
	}
	if err := q.redis.LPush(ctx, q.key, raw).Err(); err != nil {
		return errors.NewCacheOperationFailedError("enqueue "+string(env.Channel), err)
	}
	metrics.SideEffectsDispatched.WithLabelValues(env.Kind, string(env.Channel), "queued").Inc()
	return nil
}

type NotificationQueue struct {
	q *Queue
}

func (n *NotificationQueue) Send(ctx context.Context, recipientID string, kind models.NotificationKind, payload map[string]interface{}) error {
	return n.q.enqueue(ctx, &Envelope{
		Channel:   ChannelNotification,
		Recipient: recipientID,
		Kind:      string(kind),
		Payload:   payload,
	})
}

type EmailQueue struct {
	q *Queue
}

func (e *EmailQueue) Send(ctx context.Context, address string, template models.EmailTemplate, variables map[string]string) error {
	return e.q.enqueue(ctx, &Envelope{
		Channel:   ChannelEmail,
		Recipient: address,
		Kind:      string(template),
		Variables: variables,
	})
}
