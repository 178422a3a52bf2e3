package domain

import "time"

// Session is what the login collaborator parks under a one-time opaque
// handle after it has authenticated the user. Consuming the handle is
// destructive: the first issuance wins, a replay finds nothing.
type Session struct {
	UserID    string    `json:"user_id"`
	Service   string    `json:"service"`
	CreatedAt time.Time `json:"created_at"`
}
