package dispatch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/metrics"
)

// Processor drains the dispatch queue. A nil sender for a channel drops its
// envelopes with outcome "disabled". Failed deliveries are not retried.
type Processor struct {
	redis       redis.Cmdable
	key         string
	push        Sender
	email       Sender
	pollTimeout time.Duration
	logger      logger.Logger
}

type ProcessorOption func(*Processor)

func WithPushSender(s Sender) ProcessorOption {
	return func(p *Processor) { p.push = s }
}

func WithEmailSender(s Sender) ProcessorOption {
	return func(p *Processor) { p.email = s }
}

func WithPollTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		if d > 0 {
			p.pollTimeout = d
		}
	}
}

func NewProcessor(rdb redis.Cmdable, key string, log logger.Logger, opts ...ProcessorOption) *Processor {
	p := &Processor{
		redis:       rdb,
		key:         key,
		pollTimeout: time.Second,
		logger:      log.WithFields(map[string]interface{}{"component": "dispatch"}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run delivers envelopes until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Info("dispatch processor started", map[string]interface{}{"queue": p.key})
	for {
		if ctx.Err() != nil {
			p.logger.Info("dispatch processor stopped", nil)
			return nil
		}

		res, err := p.redis.BRPop(ctx, p.pollTimeout, p.key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Error("dispatch queue read failed", map[string]interface{}{"error": err.Error()})
			select {
			case <-ctx.Done():
			case <-time.After(p.pollTimeout):
			}
			continue
		}
		// BRPOP replies with [key, value].
		if len(res) == 2 {
			p.process(ctx, []byte(res[1]))
		}
	}
}

// Drain delivers up to max queued envelopes without blocking and returns how
// many were taken off the queue.
func (p *Processor) Drain(ctx context.Context, max int) (int, error) {
	n := 0
	for n < max {
		raw, err := p.redis.RPop(ctx, p.key).Bytes()
		if stderrors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
		p.process(ctx, raw)
	}
	return n, nil
}

func (p *Processor) process(ctx context.Context, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		metrics.SideEffectsDispatched.WithLabelValues("unknown", "unknown", "malformed").Inc()
		p.logger.Error("dropping malformed envelope", map[string]interface{}{"error": err.Error()})
		return
	}

	sender := p.senderFor(env.Channel)
	if sender == nil {
		metrics.SideEffectsDispatched.WithLabelValues(env.Kind, string(env.Channel), "disabled").Inc()
		p.logger.Debug("channel disabled, envelope dropped", map[string]interface{}{
			"envelopeId": env.ID,
			"channel":    string(env.Channel),
		})
		return
	}

	if err := sender.Deliver(ctx, &env); err != nil {
		metrics.SideEffectsDispatched.WithLabelValues(env.Kind, string(env.Channel), "failed").Inc()
		p.logger.Warn("delivery failed", map[string]interface{}{
			"envelopeId": env.ID,
			"channel":    string(env.Channel),
			"kind":       env.Kind,
			"error":      err.Error(),
		})
		return
	}
	metrics.SideEffectsDispatched.WithLabelValues(env.Kind, string(env.Channel), "delivered").Inc()
}

func (p *Processor) senderFor(ch Channel) Sender {
	switch ch {
	case ChannelNotification:
		return p.push
	case ChannelEmail:
		return p.email
	}
	return nil
}
