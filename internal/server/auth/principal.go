// Package auth holds the authentication primitives of the server: password
// hashing, signed session tokens, the route authorization gate and the
// principal that represents a logged-in user to the web layer.
package auth

import (
	"context"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
)

// Principal is the identity carried by a session.
type Principal struct {
	UserID int64
	Email  string
	Name   string
	Role   string
}

// PrincipalFromUser projects a stored user into a session principal.
func PrincipalFromUser(u *models.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == common.RoleAdmin
}

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal stored in ctx, or nil for anonymous
// requests.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
