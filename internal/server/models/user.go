// Package models defines server-side records persisted in the database.
// The records carry no framework types; the web layer projects a User into
// its session principal through auth.PrincipalFromUser.
package models

import "time"

// DefaultSecurityQuestion is assigned at registration. The answer defaults
// to the user's own name.
const DefaultSecurityQuestion = "What is your user name?"

type User struct {
	ID                 int64
	Name               string
	Email              string
	PasswordHash       string
	SecurityQuestion   string
	SecurityAnswerHash string
	Role               string
	CreatedAt          time.Time
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "ADMIN"
}
