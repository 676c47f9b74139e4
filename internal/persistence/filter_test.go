package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/screenshot/internal/domain"
)

func TestScreenshotWhereOrganizationOnly(t *testing.T) {
	where, args := ScreenshotWhere(domain.ScreenshotFilter{OrganizationID: "org-1"})
	require.Equal(t, "WHERE organization_id = $1", where)
	require.Equal(t, []interface{}{"org-1"}, args)
}

func TestScreenshotWhereNumbersPlaceholdersSequentially(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	where, args := ScreenshotWhere(domain.ScreenshotFilter{
		OrganizationID: "org-1",
		MemberID:       "member-1",
		TimeEntryID:    "entry-1",
		Start:          &start,
		End:            &end,
	})

	require.Equal(t,
		"WHERE organization_id = $1 AND member_id = $2 AND time_entry_id = $3 AND captured_at >= $4 AND captured_at <= $5",
		where)
	require.Equal(t, []interface{}{"org-1", "member-1", "entry-1", start, end}, args)
}

func TestScreenshotWhereOwnerConstraintPrecedesMemberFilter(t *testing.T) {
	where, args := ScreenshotWhere(domain.ScreenshotFilter{
		OrganizationID: "org-1",
		OwnerMemberID:  "caller",
		MemberID:       "someone-else",
	})

	// Both constraints apply; a caller restricted to their own screenshots
	// cannot widen the result set by filtering on another member.
	require.Equal(t, "WHERE organization_id = $1 AND member_id = $2 AND member_id = $3", where)
	require.Equal(t, []interface{}{"org-1", "caller", "someone-else"}, args)
}

func TestOffset(t *testing.T) {
	require.Equal(t, 0, Offset(1, 15))
	require.Equal(t, 15, Offset(2, 15))
	require.Equal(t, 45, Offset(4, 15))
	require.Equal(t, 0, Offset(0, 15))
	require.Equal(t, 0, Offset(-3, 15))
}
