package models

import "time"

// LoginAuditEntry records one successful login. Entries are append-only:
// they are never updated or deleted by the service.
type LoginAuditEntry struct {
	// ID is assigned by the store.
	ID int64 `json:"-"`

	UserID         string    `json:"user_id"`
	IP             string    `json:"ip"`
	ClientIdentity string    `json:"client_identity"`
	Timestamp      time.Time `json:"timestamp"`
}
