package common

// Cookie names used by the web layer.
const (
	SessionCookieName = "sr_session"
	FlashCookieName   = "sr_flash"
)

// Role names persisted in users.role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
