// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"fmt"
	"strings"

	"example.com/screenshot/internal/domain"
)

// ScreenshotWhere translates a filter into a WHERE clause and its positional
// arguments, starting at placeholder $1. Absent filter fields impose no
// constraint; start/end bounds are inclusive.
func ScreenshotWhere(filter domain.ScreenshotFilter) (string, []interface{}) {
	clauses := []string{"organization_id = $1"}
	args := []interface{}{filter.OrganizationID}

	appendClause := func(condition string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(condition, len(args)))
	}

	if filter.OwnerMemberID != "" {
		appendClause("member_id = $%d", filter.OwnerMemberID)
	}
	if filter.MemberID != "" {
		appendClause("member_id = $%d", filter.MemberID)
	}
	if filter.TimeEntryID != "" {
		appendClause("time_entry_id = $%d", filter.TimeEntryID)
	}
	if filter.Start != nil {
		appendClause("captured_at >= $%d", *filter.Start)
	}
	if filter.End != nil {
		appendClause("captured_at <= $%d", *filter.End)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Offset converts a 1-based page number into a row offset.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
