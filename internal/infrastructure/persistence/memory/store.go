// Package memory provides an in-memory implementation of the persistence
// ports, selected by constructor injection as an alternative to SQLite for
// tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/openlistings/collateral-workflow/internal/application/port"
	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

// Store implements the draft, history and listing ports over process memory.
// All methods are safe for concurrent use; the single mutex makes the
// conditional update atomic, matching the row-level guarantee SQLite gives.
type Store struct {
	mu       sync.Mutex
	drafts   map[string]*entity.Draft
	order    []string
	history  []*entity.HistoryEntry
	listings map[string]*entity.ListingContext
	nextID   int64
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		drafts:   make(map[string]*entity.Draft),
		listings: make(map[string]*entity.ListingContext),
	}
}

// Create stores a new draft
func (s *Store) Create(ctx context.Context, draft *entity.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[draft.ID] = draft.Clone()
	s.order = append(s.order, draft.ID)
	return nil
}

// GetByID returns a copy of the draft, or nil when absent
func (s *Store) GetByID(ctx context.Context, id string) (*entity.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, nil
	}
	return draft.Clone(), nil
}

// List returns drafts in insertion order with pagination
func (s *Store) List(ctx context.Context, limit, offset int) ([]*entity.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offset >= len(s.order) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(s.order) {
		end = len(s.order)
	}

	out := make([]*entity.Draft, 0, end-offset)
	for _, id := range s.order[offset:end] {
		out = append(out, s.drafts[id].Clone())
	}
	return out, nil
}

// UpdateWhereStatus applies the patch only if the stored draft's status
// still equals expectedStatus. Returns nil, nil when no row matched.
func (s *Store) UpdateWhereStatus(ctx context.Context, id, expectedStatus string, patch *entity.DraftPatch) (*entity.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok || draft.Status != expectedStatus {
		return nil, nil
	}

	updated := patch.Apply(draft, time.Now())
	s.drafts[id] = updated
	return updated.Clone(), nil
}

// Append adds an immutable history entry
func (s *Store) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	cp := *entry
	cp.ID = s.nextID
	s.history = append(s.history, &cp)
	entry.ID = cp.ID
	return nil
}

// GetByDraftID returns history entries for a draft in append order
func (s *Store) GetByDraftID(ctx context.Context, draftID string) ([]*entity.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.HistoryEntry
	for _, entry := range s.history {
		if entry.DraftID == draftID {
			cp := *entry
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CreateListing stores a listing context
func (s *Store) CreateListing(ctx context.Context, listing *entity.ListingContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *listing
	s.listings[listing.ID] = &cp
	return nil
}

// GetListingByID returns the listing context, or nil when absent
func (s *Store) GetListingByID(ctx context.Context, id string) (*entity.ListingContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *listing
	return &cp, nil
}

// WithTransaction runs fn directly; the store's mutex already serializes
// each individual operation.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Listings adapts the store to port.ListingRepository / port.ListingProvider
func (s *Store) Listings() *ListingStore {
	return &ListingStore{store: s}
}

// ListingStore exposes the listing operations under the listing port names
type ListingStore struct {
	store *Store
}

// Create stores a listing context
func (l *ListingStore) Create(ctx context.Context, listing *entity.ListingContext) error {
	return l.store.CreateListing(ctx, listing)
}

// GetByID returns the listing context, or nil when absent
func (l *ListingStore) GetByID(ctx context.Context, id string) (*entity.ListingContext, error) {
	return l.store.GetListingByID(ctx, id)
}

// Verify interface compliance
var (
	_ port.DraftRepository    = (*Store)(nil)
	_ port.HistoryRepository  = (*Store)(nil)
	_ port.TransactionManager = (*Store)(nil)
	_ port.ListingRepository  = (*ListingStore)(nil)
	_ port.ListingProvider    = (*ListingStore)(nil)
)
