// Package domain defines the business logic for the screenshot service.
package domain

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/screenshot/internal/authz"
	"example.com/screenshot/internal/observability"
)

const (
	// DefaultPageSize bounds listing results when no page size is configured.
	DefaultPageSize = 15
	// DefaultTemporaryURLTTL is the lifetime of generated image URLs.
	DefaultTemporaryURLTTL = 15 * time.Minute
)

// ScreenshotFilter narrows a listing query. OwnerMemberID is set by the access
// gate when the caller only holds view:own and is applied independently of the
// caller-supplied MemberID filter.
type ScreenshotFilter struct {
	OrganizationID string
	MemberID       string
	TimeEntryID    string
	OwnerMemberID  string
	Start          *time.Time
	End            *time.Time
}

// Page describes one page of a listing result.
type Page struct {
	Number int
	Size   int
	Total  int
}

// ScreenshotRepository captures persistence operations for screenshots.
// Lookups return (nil, nil) when no record exists.
type ScreenshotRepository interface {
	Create(ctx context.Context, screenshot Screenshot) error
	Get(ctx context.Context, screenshotID string) (*Screenshot, error)
	List(ctx context.Context, filter ScreenshotFilter, page, pageSize int) ([]Screenshot, int, error)
	Delete(ctx context.Context, screenshotID string) error
}

// TimeEntryRepository resolves time entries referenced by uploads.
type TimeEntryRepository interface {
	GetTimeEntry(ctx context.Context, timeEntryID string) (*TimeEntry, error)
}

// OrganizationRepository resolves organizations and their screenshot settings.
type OrganizationRepository interface {
	GetOrganization(ctx context.Context, organizationID string) (*Organization, error)
}

// MemberRepository resolves the acting member within an organization.
type MemberRepository interface {
	FindMember(ctx context.Context, organizationID, userID string) (*Member, error)
}

// BlobStore abstracts the object store holding screenshot images.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	TemporaryURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// EventPublisher emits domain events after successful mutations.
type EventPublisher interface {
	ScreenshotCreated(ctx context.Context, screenshot Screenshot) error
	ScreenshotDeleted(ctx context.Context, screenshot Screenshot) error
}

// Service orchestrates screenshot workflows and enforces the access rules.
type Service struct {
	screenshots ScreenshotRepository
	timeEntries TimeEntryRepository
	orgs        OrganizationRepository
	members     MemberRepository
	blobs       BlobStore

	events   EventPublisher
	logger   *log.Logger
	pageSize int
	urlTTL   time.Duration
}

// Option customises a Service.
type Option func(*Service)

// WithEvents attaches a domain-event publisher. Publish failures are logged
// and never surfaced to callers.
func WithEvents(publisher EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithPageSize sets the listing page size.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithTemporaryURLTTL sets the lifetime of generated image URLs.
func WithTemporaryURLTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.urlTTL = ttl
		}
	}
}

// NewService constructs a Service.
func NewService(
	screenshots ScreenshotRepository,
	timeEntries TimeEntryRepository,
	orgs OrganizationRepository,
	members MemberRepository,
	blobs BlobStore,
	opts ...Option,
) *Service {
	s := &Service{
		screenshots: screenshots,
		timeEntries: timeEntries,
		orgs:        orgs,
		members:     members,
		blobs:       blobs,
		logger:      log.Default(),
		pageSize:    DefaultPageSize,
		urlTTL:      DefaultTemporaryURLTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveMember maps the authenticated user to their membership in the path
// organization. Users without a membership are rejected as forbidden.
func (s *Service) resolveMember(ctx context.Context, organizationID, userID string) (*Member, authz.PermissionSet, error) {
	member, err := s.members.FindMember(ctx, organizationID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve member: %w", err)
	}
	if member == nil {
		return nil, nil, ErrPermissionDenied
	}
	return member, authz.PermissionsForRole(member.Role), nil
}

// ListInput carries the parameters of a listing request.
type ListInput struct {
	OrganizationID string
	UserID         string
	MemberID       string
	TimeEntryID    string
	Start          *time.Time
	End            *time.Time
	PageNumber     int
}

// ListScreenshots returns one page of screenshots in the organization, most
// recently captured first. Callers holding only view:own are restricted to
// their own records before any query executes.
func (s *Service) ListScreenshots(ctx context.Context, in ListInput) ([]Screenshot, Page, error) {
	member, perms, err := s.resolveMember(ctx, in.OrganizationID, in.UserID)
	if err != nil {
		return nil, Page{}, err
	}

	canViewAll := perms.Has(authz.PermScreenshotsViewAll)
	if !canViewAll && !perms.Has(authz.PermScreenshotsViewOwn) {
		return nil, Page{}, ErrPermissionDenied
	}

	filter := ScreenshotFilter{
		OrganizationID: in.OrganizationID,
		MemberID:       in.MemberID,
		TimeEntryID:    in.TimeEntryID,
		Start:          in.Start,
		End:            in.End,
	}
	if !canViewAll {
		filter.OwnerMemberID = member.ID
	}

	pageNumber := in.PageNumber
	if pageNumber < 1 {
		pageNumber = 1
	}

	items, total, err := s.screenshots.List(ctx, filter, pageNumber, s.pageSize)
	if err != nil {
		return nil, Page{}, fmt.Errorf("list screenshots: %w", err)
	}

	return items, Page{Number: pageNumber, Size: s.pageSize, Total: total}, nil
}

// UploadInput carries an upload request. File contents are streamed to the
// blob store without buffering the whole image.
type UploadInput struct {
	OrganizationID string
	UserID         string
	TimeEntryID    string
	CapturedAt     time.Time
	Filename       string
	ContentType    string
	Size           int64
	File           io.Reader
}

// UploadScreenshot stores the image and creates the screenshot record with
// member and organization denormalized from the time entry. If the record
// insert fails after the blob write succeeded the blob is left orphaned; the
// reverse failure leaves no trace. There is deliberately no compensating
// cleanup for either case.
func (s *Service) UploadScreenshot(ctx context.Context, in UploadInput) (*Screenshot, error) {
	member, perms, err := s.resolveMember(ctx, in.OrganizationID, in.UserID)
	if err != nil {
		return nil, err
	}
	if !perms.Has(authz.PermScreenshotsUpload) {
		return nil, ErrPermissionDenied
	}

	org, err := s.orgs.GetOrganization(ctx, in.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("resolve organization: %w", err)
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	if !org.ScreenshotsEnabled {
		return nil, ErrScreenshotsDisabled
	}

	entry, err := s.timeEntries.GetTimeEntry(ctx, in.TimeEntryID)
	if err != nil {
		return nil, fmt.Errorf("resolve time entry: %w", err)
	}
	if entry == nil {
		return nil, ErrTimeEntryNotFound
	}
	if entry.OrganizationID != org.ID {
		return nil, ErrTimeEntryNotInOrganization
	}
	if entry.MemberID != member.ID {
		return nil, ErrTimeEntryNotOwned
	}

	key := storageKey(org.ID, member.ID, in.Filename, in.ContentType)
	if err := s.blobs.Put(ctx, key, in.File, in.ContentType, in.Size); err != nil {
		return nil, fmt.Errorf("store screenshot: %w", err)
	}

	now := time.Now().UTC()
	screenshot := Screenshot{
		ID:             uuid.NewString(),
		StoragePath:    key,
		CapturedAt:     in.CapturedAt.UTC(),
		TimeEntryID:    entry.ID,
		MemberID:       member.ID,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.screenshots.Create(ctx, screenshot); err != nil {
		return nil, fmt.Errorf("create screenshot record: %w", err)
	}

	observability.RecordScreenshotPersisted(now)
	s.publish(ctx, "screenshot.created", screenshot, func(ctx context.Context, sc Screenshot) error {
		return s.events.ScreenshotCreated(ctx, sc)
	})

	return &screenshot, nil
}

// GetScreenshot resolves a single screenshot after applying the access gate.
func (s *Service) GetScreenshot(ctx context.Context, organizationID, userID, screenshotID string) (*Screenshot, error) {
	member, perms, err := s.resolveMember(ctx, organizationID, userID)
	if err != nil {
		return nil, err
	}

	screenshot, err := s.screenshots.Get(ctx, screenshotID)
	if err != nil {
		return nil, fmt.Errorf("get screenshot: %w", err)
	}
	if screenshot == nil {
		return nil, ErrScreenshotNotFound
	}
	if screenshot.OrganizationID != organizationID {
		return nil, ErrScreenshotNotInOrganization
	}

	canViewAll := perms.Has(authz.PermScreenshotsViewAll)
	if !canViewAll && !perms.Has(authz.PermScreenshotsViewOwn) {
		return nil, ErrPermissionDenied
	}
	if !canViewAll && screenshot.MemberID != member.ID {
		return nil, ErrPermissionDenied
	}

	return screenshot, nil
}

// DeleteScreenshot removes the record and then attempts to remove the
// underlying blob. The record deletion is authoritative: an absent blob or an
// unreachable store never fails the operation, leaving at worst an orphaned
// blob. Deleting the record first also guarantees the blob is never removed
// while the record still exists.
func (s *Service) DeleteScreenshot(ctx context.Context, organizationID, userID, screenshotID string) error {
	member, perms, err := s.resolveMember(ctx, organizationID, userID)
	if err != nil {
		return err
	}

	screenshot, err := s.screenshots.Get(ctx, screenshotID)
	if err != nil {
		return fmt.Errorf("get screenshot: %w", err)
	}
	if screenshot == nil {
		return ErrScreenshotNotFound
	}
	if screenshot.OrganizationID != organizationID {
		return ErrScreenshotNotInOrganization
	}

	canDeleteAll := perms.Has(authz.PermScreenshotsDeleteAll)
	if !canDeleteAll && !perms.Has(authz.PermScreenshotsDeleteOwn) {
		return ErrPermissionDenied
	}
	if !canDeleteAll && screenshot.MemberID != member.ID {
		return ErrPermissionDenied
	}

	if err := s.screenshots.Delete(ctx, screenshotID); err != nil {
		return fmt.Errorf("delete screenshot record: %w", err)
	}
	observability.RecordScreenshotDeleted()

	s.cleanupBlob(ctx, *screenshot)
	s.publish(ctx, "screenshot.deleted", *screenshot, func(ctx context.Context, sc Screenshot) error {
		return s.events.ScreenshotDeleted(ctx, sc)
	})

	return nil
}

// ImageURL generates a fresh temporary URL for the screenshot image. URLs are
// recomputed on every read and never cached in the record.
func (s *Service) ImageURL(ctx context.Context, screenshot Screenshot) (string, error) {
	url, err := s.blobs.TemporaryURL(ctx, screenshot.StoragePath, s.urlTTL)
	if err != nil {
		return "", fmt.Errorf("temporary url: %w", err)
	}
	return url, nil
}

// cleanupBlob best-effort removes the stored image. Failures are logged and
// counted, never propagated.
func (s *Service) cleanupBlob(ctx context.Context, screenshot Screenshot) {
	exists, err := s.blobs.Exists(ctx, screenshot.StoragePath)
	if err != nil {
		observability.RecordBlobCleanupFailure()
		s.logger.Printf("blob cleanup: exists check failed for %s: %v", screenshot.StoragePath, err)
		return
	}
	if !exists {
		return
	}
	if err := s.blobs.Delete(ctx, screenshot.StoragePath); err != nil {
		observability.RecordBlobCleanupFailure()
		s.logger.Printf("blob cleanup: delete failed for %s: %v", screenshot.StoragePath, err)
	}
}

func (s *Service) publish(ctx context.Context, event string, screenshot Screenshot, fn func(context.Context, Screenshot) error) {
	if s.events == nil {
		return
	}
	if err := fn(ctx, screenshot); err != nil {
		s.logger.Printf("publish %s for %s: %v", event, screenshot.ID, err)
	}
}

// storageKey namespaces blob keys by organization and member. The original
// filename only contributes its extension.
func storageKey(organizationID, memberID, filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("screenshots/%s/%s/%s%s", organizationID, memberID, uuid.NewString(), ext)
}
