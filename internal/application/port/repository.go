package port

import (
	"context"

	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

// DraftRepository defines persistence operations for Draft
type DraftRepository interface {
	Create(ctx context.Context, draft *entity.Draft) error
	GetByID(ctx context.Context, id string) (*entity.Draft, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Draft, error)

	// UpdateWhereStatus applies the patch only where the draft's current
	// status equals expectedStatus, and returns the updated draft. A nil
	// draft with a nil error means no row matched: either the draft is gone
	// or a concurrent transition won the race.
	UpdateWhereStatus(ctx context.Context, id, expectedStatus string, patch *entity.DraftPatch) (*entity.Draft, error)
}

// HistoryRepository defines the append-only audit trail for transitions.
// Entries are never updated or deleted once written.
type HistoryRepository interface {
	Append(ctx context.Context, entry *entity.HistoryEntry) error
	GetByDraftID(ctx context.Context, draftID string) ([]*entity.HistoryEntry, error)
}

// ListingRepository defines persistence operations for ListingContext
type ListingRepository interface {
	Create(ctx context.Context, listing *entity.ListingContext) error
	GetByID(ctx context.Context, id string) (*entity.ListingContext, error)
}

// ListingProvider supplies the external context consumed by guards. A nil
// listing with a nil error means no context exists for the draft.
type ListingProvider interface {
	GetByID(ctx context.Context, listingID string) (*entity.ListingContext, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
