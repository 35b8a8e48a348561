// Package notify delivers password reset links to users. Delivery is
// optional: when no Notifier is configured the caller decides how the link
// reaches the requester.
package notify

import (
	"context"
	"net/url"
	"strings"
)

// Notifier sends a password reset link to an address.
type Notifier interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// ResetLink builds the public reset URL for token.
func ResetLink(baseURL, token string) string {
	return strings.TrimSuffix(baseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}
