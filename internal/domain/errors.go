package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is the base error for every authorization failure.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrScreenshotNotFound is returned when a screenshot cannot be located.
	ErrScreenshotNotFound = errors.New("screenshot not found")
	// ErrTimeEntryNotFound is returned when the referenced time entry does not exist.
	ErrTimeEntryNotFound = errors.New("time entry not found")
	// ErrOrganizationNotFound is returned when the path organization does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrScreenshotsDisabled rejects uploads for organizations that have not
	// enabled screenshot capture. This is a business-rule failure, not an
	// authorization failure.
	ErrScreenshotsDisabled = errors.New("screenshots are not enabled for this organization")
)

// Ownership and organization mismatches are authorization failures with
// distinct messages. They must never be reported as not-found.
var (
	ErrScreenshotNotInOrganization = fmt.Errorf("%w: screenshot does not belong to organization", ErrPermissionDenied)
	ErrTimeEntryNotInOrganization  = fmt.Errorf("%w: time entry does not belong to organization", ErrPermissionDenied)
	ErrTimeEntryNotOwned           = fmt.Errorf("%w: time entry does not belong to the authenticated user", ErrPermissionDenied)
)
