// Package testsupport provides in-memory collaborators for tests.
package testsupport

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"example.com/screenshot/internal/domain"
)

// MemoryStore is an in-memory implementation of the repository interfaces
// consumed by the domain service.
type MemoryStore struct {
	mu sync.Mutex

	Screenshots   map[string]domain.Screenshot
	TimeEntries   map[string]domain.TimeEntry
	Organizations map[string]domain.Organization
	Members       map[string]domain.Member

	// CreateErr forces screenshot inserts to fail.
	CreateErr error
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Screenshots:   make(map[string]domain.Screenshot),
		TimeEntries:   make(map[string]domain.TimeEntry),
		Organizations: make(map[string]domain.Organization),
		Members:       make(map[string]domain.Member),
	}
}

// AddMember stores a member fixture.
func (s *MemoryStore) AddMember(m domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Members[m.ID] = m
}

// AddTimeEntry stores a time entry fixture.
func (s *MemoryStore) AddTimeEntry(e domain.TimeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TimeEntries[e.ID] = e
}

// AddOrganization stores an organization fixture.
func (s *MemoryStore) AddOrganization(o domain.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Organizations[o.ID] = o
}

// AddScreenshot stores a screenshot fixture.
func (s *MemoryStore) AddScreenshot(sc domain.Screenshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Screenshots[sc.ID] = sc
}

// Create implements domain.ScreenshotRepository.
func (s *MemoryStore) Create(_ context.Context, sc domain.Screenshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.Screenshots[sc.ID] = sc
	return nil
}

// Get implements domain.ScreenshotRepository.
func (s *MemoryStore) Get(_ context.Context, screenshotID string) (*domain.Screenshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.Screenshots[screenshotID]; ok {
		out := sc
		return &out, nil
	}
	return nil, nil
}

// List implements domain.ScreenshotRepository with the same filter semantics
// as the Postgres repository: every present field constrains, bounds are
// inclusive, results are ordered by captured_at descending.
func (s *MemoryStore) List(_ context.Context, filter domain.ScreenshotFilter, page, pageSize int) ([]domain.Screenshot, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]domain.Screenshot, 0, len(s.Screenshots))
	for _, sc := range s.Screenshots {
		if sc.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.OwnerMemberID != "" && sc.MemberID != filter.OwnerMemberID {
			continue
		}
		if filter.MemberID != "" && sc.MemberID != filter.MemberID {
			continue
		}
		if filter.TimeEntryID != "" && sc.TimeEntryID != filter.TimeEntryID {
			continue
		}
		if filter.Start != nil && sc.CapturedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && sc.CapturedAt.After(*filter.End) {
			continue
		}
		matched = append(matched, sc)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CapturedAt.Equal(matched[j].CapturedAt) {
			return matched[i].CapturedAt.After(matched[j].CapturedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	offset := (page - 1) * pageSize
	if offset >= total {
		return []domain.Screenshot{}, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// Delete implements domain.ScreenshotRepository.
func (s *MemoryStore) Delete(_ context.Context, screenshotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Screenshots, screenshotID)
	return nil
}

// GetTimeEntry implements domain.TimeEntryRepository.
func (s *MemoryStore) GetTimeEntry(_ context.Context, timeEntryID string) (*domain.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.TimeEntries[timeEntryID]; ok {
		out := entry
		return &out, nil
	}
	return nil, nil
}

// GetOrganization implements domain.OrganizationRepository.
func (s *MemoryStore) GetOrganization(_ context.Context, organizationID string) (*domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org, ok := s.Organizations[organizationID]; ok {
		out := org
		return &out, nil
	}
	return nil, nil
}

// FindMember implements domain.MemberRepository.
func (s *MemoryStore) FindMember(_ context.Context, organizationID, userID string) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.Members {
		if m.OrganizationID == organizationID && m.UserID == userID {
			out := m
			return &out, nil
		}
	}
	return nil, nil
}

// MemoryBlobStore is an in-memory implementation of domain.BlobStore.
type MemoryBlobStore struct {
	mu sync.Mutex

	Objects map[string][]byte
	Deleted []string

	PutErr    error
	DeleteErr error
	ExistsErr error
}

// NewMemoryBlobStore builds an empty MemoryBlobStore.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{Objects: make(map[string][]byte)}
}

// Put implements domain.BlobStore.
func (b *MemoryBlobStore) Put(_ context.Context, key string, body io.Reader, _ string, _ int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PutErr != nil {
		return b.PutErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.Objects[key] = data
	return nil
}

// Delete implements domain.BlobStore.
func (b *MemoryBlobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	delete(b.Objects, key)
	b.Deleted = append(b.Deleted, key)
	return nil
}

// Exists implements domain.BlobStore.
func (b *MemoryBlobStore) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ExistsErr != nil {
		return false, b.ExistsErr
	}
	_, ok := b.Objects[key]
	return ok, nil
}

// TemporaryURL implements domain.BlobStore with a deterministic fake URL.
func (b *MemoryBlobStore) TemporaryURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://blobs.test/%s?expires=%d", key, int(ttl.Seconds())), nil
}
