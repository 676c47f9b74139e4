package domain

import "time"

// Screenshot is a captured work-session image persisted in PostgreSQL.
// The member and organization references are copied from the owning time
// entry at creation time and never re-derived afterwards.
type Screenshot struct {
	ID             string
	StoragePath    string
	CapturedAt     time.Time
	TimeEntryID    string
	MemberID       string
	OrganizationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
