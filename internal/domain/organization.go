package domain

import (
	"time"

	"example.com/screenshot/internal/authz"
)

// Organization carries the tenant-level settings consulted by screenshot uploads.
// The interval and idle thresholds are capture-cadence hints for clients; the
// server does not enforce them.
type Organization struct {
	ID                        string
	Name                      string
	ScreenshotsEnabled        bool
	ScreenshotIntervalMinutes int
	IdleDetectionEnabled      bool
	IdleThresholdMinutes      int
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// Member links a user to an organization with a role.
type Member struct {
	ID             string
	UserID         string
	OrganizationID string
	Role           authz.Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TimeEntry is the tracked work session a screenshot belongs to.
type TimeEntry struct {
	ID             string
	MemberID       string
	OrganizationID string
	Start          time.Time
	End            *time.Time
}
