package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Seams for tests.
var (
	newMailClient = mail.NewClient
	sendMsg       = func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
		return c.DialAndSendWithContext(ctx, m)
	}
)

const resetBody = "To reset your password, open the link below:\r\n" +
	"%s\r\n" +
	"\r\nThe link is valid for 24 hours. If you did not ask for it, ignore this message.\r\n"

// SMTPNotifier sends reset links as plain-text email.
type SMTPNotifier struct {
	host string
	from string
	opts []mail.Option
}

// NewSMTPNotifier configures PLAIN auth when user is non-empty. STARTTLS is
// used when the server offers it. The sender address is validated here.
func NewSMTPNotifier(host string, port int, user, password, from string) (*SMTPNotifier, error) {
	if err := mail.NewMsg().From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(password),
		)
	}

	// Fail fast on a bad host or option set.
	if _, err := newMailClient(host, opts...); err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPNotifier{host: host, from: from, opts: opts}, nil
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, to, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := buildResetMessage(n.from, to, link)
	if err != nil {
		return err
	}

	// One client per send; the dispatcher may deliver concurrently.
	client, err := newMailClient(n.host, n.opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := sendMsg(ctx, client, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildResetMessage(from, to, link string) (*mail.Msg, error) {
	m := mail.NewMsg(mail.WithEncoding(mail.NoEncoding))
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	m.Subject("Password reset")
	m.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(resetBody, link))
	return m, nil
}
