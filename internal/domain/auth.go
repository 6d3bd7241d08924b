package domain

import "time"

// Session is an issued bearer credential returned to the client on login.
type Session struct {
	Token     string
	ExpiresAt time.Time
}
