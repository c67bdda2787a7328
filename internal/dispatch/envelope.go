// Package dispatch queues post-commit side effects on Redis and delivers them
// through SNS (push notices) and SES (emails).
package dispatch

import "time"

type Channel string

const (
	ChannelNotification Channel = "notification"
	ChannelEmail        Channel = "email"
)

// Envelope is one queued delivery.
type Envelope struct {
	ID         string                 `json:"id"`
	Channel    Channel                `json:"channel"`
	Recipient  string                 `json:"recipient"`
	Kind       string                 `json:"kind"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Variables  map[string]string      `json:"variables,omitempty"`
	EnqueuedAt time.Time              `json:"enqueuedAt"`
}
