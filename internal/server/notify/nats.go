package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ResetRequested is the message published for an external mailer.
type ResetRequested struct {
	Email       string    `json:"email"`
	Link        string    `json:"link"`
	RequestedAt time.Time `json:"requested_at"`
}

type publisher interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSNotifier publishes reset requests to a NATS subject instead of
// sending mail itself.
type NATSNotifier struct {
	conn    publisher
	closer  func()
	subject string
	now     func() time.Time
}

// NewNATSNotifier connects to url and publishes on subject.
func NewNATSNotifier(url, subject string, opts ...nats.Option) (*NATSNotifier, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSNotifier{
		conn:    nc,
		closer:  func() { _ = nc.Drain() },
		subject: subject,
		now:     time.Now,
	}, nil
}

func (n *NATSNotifier) SendPasswordReset(ctx context.Context, to, link string) error {
	data, err := json.Marshal(ResetRequested{Email: to, Link: link, RequestedAt: n.now().UTC()})
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() {
	if n.closer != nil {
		n.closer()
	}
}
