//go:build integration

package postgres

import (
	"context"
	"io/fs"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/screenshot/internal/db"
	"example.com/screenshot/internal/domain"
)

func TestRepositoryScreenshotLifecycle(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("screenshots"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	runMigrations(t, ctx, pool)

	repo := NewRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	org := uuid.NewString()
	otherOrg := uuid.NewString()

	member := seedMember(t, ctx, pool, org, "employee", now)
	otherMember := seedMember(t, ctx, pool, otherOrg, "employee", now)
	entry := seedTimeEntry(t, ctx, pool, org, member, now)
	otherEntry := seedTimeEntry(t, ctx, pool, otherOrg, otherMember, now)

	first := domain.Screenshot{
		ID:             uuid.NewString(),
		StoragePath:    "screenshots/" + org + "/" + member + "/" + uuid.NewString() + ".png",
		CapturedAt:     now.Add(-time.Minute),
		TimeEntryID:    entry,
		MemberID:       member,
		OrganizationID: org,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	second := first
	second.ID = uuid.NewString()
	second.CapturedAt = now
	foreign := domain.Screenshot{
		ID:             uuid.NewString(),
		StoragePath:    "screenshots/" + otherOrg + "/" + otherMember + "/" + uuid.NewString() + ".png",
		CapturedAt:     now,
		TimeEntryID:    otherEntry,
		MemberID:       otherMember,
		OrganizationID: otherOrg,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, foreign))

	stored, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, first.StoragePath, stored.StoragePath)
	require.Equal(t, org, stored.OrganizationID)

	missing, err := repo.Get(ctx, uuid.NewString())
	require.NoError(t, err)
	require.Nil(t, missing)

	listed, total, err := repo.List(ctx, domain.ScreenshotFilter{OrganizationID: org}, 1, 15)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, listed, 2)
	require.Equal(t, second.ID, listed[0].ID, "most recent capture listed first")
	require.Equal(t, first.ID, listed[1].ID)

	start := now.Add(-30 * time.Second)
	bounded, total, err := repo.List(ctx, domain.ScreenshotFilter{OrganizationID: org, Start: &start}, 1, 15)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, bounded, 1)
	require.Equal(t, second.ID, bounded[0].ID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	deleted, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Nil(t, deleted)

	_, total, err = repo.List(ctx, domain.ScreenshotFilter{OrganizationID: otherOrg}, 1, 15)
	require.NoError(t, err)
	require.Equal(t, 1, total, "organization scoping must hold")
}

func TestRepositoryResolvesGateEntities(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("screenshots"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	runMigrations(t, ctx, pool)

	repo := NewRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	org := uuid.NewString()
	userID := uuid.NewString()
	_, err = pool.Exec(ctx, `INSERT INTO organizations (id, name, screenshots_enabled, screenshot_interval_minutes, idle_detection_enabled, idle_threshold_minutes, created_at, updated_at)
        VALUES ($1, 'Acme', true, 10, true, 5, $2, $2)`, org, now)
	require.NoError(t, err)

	memberID := uuid.NewString()
	_, err = pool.Exec(ctx, `INSERT INTO members (id, user_id, organization_id, role, created_at, updated_at)
        VALUES ($1, $2, $3, 'employee', $4, $4)`, memberID, userID, org, now)
	require.NoError(t, err)

	loadedOrg, err := repo.GetOrganization(ctx, org)
	require.NoError(t, err)
	require.NotNil(t, loadedOrg)
	require.True(t, loadedOrg.ScreenshotsEnabled)
	require.Equal(t, 10, loadedOrg.ScreenshotIntervalMinutes)
	require.True(t, loadedOrg.IdleDetectionEnabled)
	require.Equal(t, 5, loadedOrg.IdleThresholdMinutes)

	member, err := repo.FindMember(ctx, org, userID)
	require.NoError(t, err)
	require.NotNil(t, member)
	require.Equal(t, memberID, member.ID)

	nonMember, err := repo.FindMember(ctx, org, uuid.NewString())
	require.NoError(t, err)
	require.Nil(t, nonMember)

	entryID := uuid.NewString()
	ended := now.Add(time.Hour)
	_, err = pool.Exec(ctx, `INSERT INTO time_entries (id, member_id, organization_id, start, "end", created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $4, $4)`, entryID, memberID, org, now, ended)
	require.NoError(t, err)

	entry, err := repo.GetTimeEntry(ctx, entryID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, memberID, entry.MemberID)
	require.NotNil(t, entry.End)
}

func seedMember(t *testing.T, ctx context.Context, pool *pgxpool.Pool, orgID, role string, now time.Time) string {
	t.Helper()
	_, err := pool.Exec(ctx, `INSERT INTO organizations (id, name, screenshots_enabled, screenshot_interval_minutes, idle_detection_enabled, idle_threshold_minutes, created_at, updated_at)
        VALUES ($1, 'Seeded', true, 10, false, 5, $2, $2) ON CONFLICT (id) DO NOTHING`, orgID, now)
	require.NoError(t, err)

	memberID := uuid.NewString()
	_, err = pool.Exec(ctx, `INSERT INTO members (id, user_id, organization_id, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5)`, memberID, uuid.NewString(), orgID, role, now)
	require.NoError(t, err)
	return memberID
}

func seedTimeEntry(t *testing.T, ctx context.Context, pool *pgxpool.Pool, orgID, memberID string, now time.Time) string {
	t.Helper()
	entryID := uuid.NewString()
	_, err := pool.Exec(ctx, `INSERT INTO time_entries (id, member_id, organization_id, start, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4, $4)`, entryID, memberID, orgID, now)
	require.NoError(t, err)
	return entryID
}

func runMigrations(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	files, err := fs.Glob(db.MigrationFS, "migrations/*.up.sql")
	require.NoError(t, err)
	sort.Strings(files)

	for _, name := range files {
		contents, readErr := fs.ReadFile(db.MigrationFS, name)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
