package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/screenshot/internal/domain"
	"example.com/screenshot/internal/persistence"
)

// Repository provides Postgres-backed persistence for screenshots and the
// entities the access gate consults.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const screenshotColumns = "id, storage_path, captured_at, time_entry_id, member_id, organization_id, created_at, updated_at"

func scanScreenshot(row pgx.Row) (*domain.Screenshot, error) {
	var sc domain.Screenshot
	err := row.Scan(&sc.ID, &sc.StoragePath, &sc.CapturedAt, &sc.TimeEntryID, &sc.MemberID, &sc.OrganizationID, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// Create persists a screenshot record.
func (r *Repository) Create(ctx context.Context, sc domain.Screenshot) error {
	const stmt = `INSERT INTO screenshots (id, storage_path, captured_at, time_entry_id, member_id, organization_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err := r.pool.Exec(ctx, stmt,
		sc.ID,
		sc.StoragePath,
		sc.CapturedAt,
		sc.TimeEntryID,
		sc.MemberID,
		sc.OrganizationID,
		sc.CreatedAt,
		sc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert screenshot: %w", err)
	}
	return nil
}

// Get retrieves a screenshot by ID. Returns (nil, nil) when no record exists.
func (r *Repository) Get(ctx context.Context, screenshotID string) (*domain.Screenshot, error) {
	query := `SELECT ` + screenshotColumns + ` FROM screenshots WHERE id = $1`

	sc, err := scanScreenshot(r.pool.QueryRow(ctx, query, screenshotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sc, nil
}

// List returns one page of screenshots matching the filter, ordered by
// captured_at descending, together with the total match count.
func (r *Repository) List(ctx context.Context, filter domain.ScreenshotFilter, page, pageSize int) ([]domain.Screenshot, int, error) {
	where, args := persistence.ScreenshotWhere(filter)

	var total int
	countQuery := `SELECT count(*) FROM screenshots ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count screenshots: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM screenshots %s ORDER BY captured_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		screenshotColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, persistence.Offset(page, pageSize))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list screenshots: %w", err)
	}
	defer rows.Close()

	results := make([]domain.Screenshot, 0, pageSize)
	for rows.Next() {
		sc, err := scanScreenshot(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// Delete removes a screenshot record.
func (r *Repository) Delete(ctx context.Context, screenshotID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM screenshots WHERE id = $1`, screenshotID)
	if err != nil {
		return fmt.Errorf("delete screenshot: %w", err)
	}
	return nil
}

// GetTimeEntry resolves a time entry by ID. Returns (nil, nil) when missing.
func (r *Repository) GetTimeEntry(ctx context.Context, timeEntryID string) (*domain.TimeEntry, error) {
	const query = `SELECT id, member_id, organization_id, start, "end" FROM time_entries WHERE id = $1`

	var entry domain.TimeEntry
	err := r.pool.QueryRow(ctx, query, timeEntryID).Scan(&entry.ID, &entry.MemberID, &entry.OrganizationID, &entry.Start, &entry.End)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// GetOrganization resolves an organization and its screenshot settings.
// Returns (nil, nil) when missing.
func (r *Repository) GetOrganization(ctx context.Context, organizationID string) (*domain.Organization, error) {
	const query = `SELECT id, name, screenshots_enabled, screenshot_interval_minutes, idle_detection_enabled, idle_threshold_minutes, created_at, updated_at
        FROM organizations WHERE id = $1`

	var org domain.Organization
	err := r.pool.QueryRow(ctx, query, organizationID).Scan(
		&org.ID,
		&org.Name,
		&org.ScreenshotsEnabled,
		&org.ScreenshotIntervalMinutes,
		&org.IdleDetectionEnabled,
		&org.IdleThresholdMinutes,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

// FindMember resolves the membership of a user within an organization.
// Returns (nil, nil) when the user is not a member.
func (r *Repository) FindMember(ctx context.Context, organizationID, userID string) (*domain.Member, error) {
	const query = `SELECT id, user_id, organization_id, role, created_at, updated_at
        FROM members WHERE organization_id = $1 AND user_id = $2`

	var member domain.Member
	err := r.pool.QueryRow(ctx, query, organizationID, userID).Scan(
		&member.ID,
		&member.UserID,
		&member.OrganizationID,
		&member.Role,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}
