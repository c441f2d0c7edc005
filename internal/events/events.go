// Package events publishes security-activity notifications to NATS so
// downstream consumers (alerting, anomaly detection) can react without
// coupling to the request path.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"vigil/internal/common"

	"github.com/nats-io/nats.go"
)

const (
	DefaultPublishTimeout         = 5 * time.Second
	SecurityActivitySubjectPrefix = "vigil.security"
)

// SecurityActivity is the wire payload for a security-relevant change
// on a user's account.
type SecurityActivity struct {
	Type       string         `json:"type"`
	UserId     string         `json:"userId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data,omitempty"`
}

const (
	ActivityMfaAdded      = "mfa-added"
	ActivityInviteAccept  = "org-invite-accepted"
	ActivityInviteApprove = "org-invite-approved"
	ActivityInviteReject  = "org-invite-rejected"
)

type NewPublisherOpts struct {
	Addr        string
	ServiceLogs chan<- common.ServiceLog

	options []nats.Option
}

type Publisher struct {
	client      *nats.Conn
	serviceLogs chan<- common.ServiceLog
}

func NewPublisher(opts NewPublisherOpts) (*Publisher, error) {
	client, err := nats.Connect("nats://"+opts.Addr, opts.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	if !client.IsConnected() {
		return nil, fmt.Errorf("failed to verify connection")
	}
	return &Publisher{
		client:      client,
		serviceLogs: opts.ServiceLogs,
	}, nil
}

func (p *Publisher) Close() error {
	if err := p.client.Drain(); err != nil {
		return fmt.Errorf("failed to drain connection[%s]: %w", p.client.ConnectedAddr(), err)
	}
	p.client.Close()
	return nil
}

// Publish sends the activity on `vigil.security.activity`. Delivery is
// fire-and-forget from the caller's point of view; the context bounds
// only the flush.
func (p *Publisher) Publish(ctx context.Context, activity SecurityActivity) error {
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now()
	}
	data, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}
	subject := fmt.Sprintf("%s.activity", SecurityActivitySubjectPrefix)
	if err := p.client.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := p.client.FlushTimeout(time.Until(deadline)); err != nil {
			return fmt.Errorf("failed to flush activity: %w", err)
		}
		return nil
	}
	if err := p.client.FlushTimeout(DefaultPublishTimeout); err != nil {
		return fmt.Errorf("failed to flush activity: %w", err)
	}
	return nil
}
