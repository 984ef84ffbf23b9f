package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/application/engine"
	"github.com/openlistings/collateral-workflow/internal/application/port"
	"github.com/openlistings/collateral-workflow/internal/domain/entity"
	"github.com/openlistings/collateral-workflow/internal/domain/workflow"
)

// DraftService is the application-facing surface around the workflow engine:
// draft creation and reads, plus the transition entry points.
type DraftService interface {
	CreateDraft(ctx context.Context, listingID string) (*entity.Draft, error)
	GetDraft(ctx context.Context, id string) (*entity.Draft, error)
	ListDrafts(ctx context.Context, limit, offset int) ([]*entity.Draft, error)
	GetHistory(ctx context.Context, draftID string) ([]*entity.HistoryEntry, error)

	ExecuteTransition(ctx context.Context, draftID, transitionName, actorID string, actorRole workflow.Role, params workflow.Params) (*entity.Draft, error)
	AvailableTransitions(status workflow.Status, role workflow.Role) []workflow.TransitionView

	CreateListing(ctx context.Context, listing *entity.ListingContext) error
	GetListing(ctx context.Context, id string) (*entity.ListingContext, error)
}

type draftService struct {
	engine      engine.Engine
	draftRepo   port.DraftRepository
	historyRepo port.HistoryRepository
	listingRepo port.ListingRepository
	logger      *zap.Logger
}

// NewDraftService creates a draft service over the engine and repositories
func NewDraftService(
	eng engine.Engine,
	draftRepo port.DraftRepository,
	historyRepo port.HistoryRepository,
	listingRepo port.ListingRepository,
	logger *zap.Logger,
) DraftService {
	return &draftService{
		engine:      eng,
		draftRepo:   draftRepo,
		historyRepo: historyRepo,
		listingRepo: listingRepo,
		logger:      logger,
	}
}

// CreateDraft creates a new draft in the pending state, referencing its
// source listing. All later status changes go through the engine.
func (s *draftService) CreateDraft(ctx context.Context, listingID string) (*entity.Draft, error) {
	now := time.Now()
	draft := &entity.Draft{
		ID:        newDraftID(),
		ListingID: listingID,
		Status:    workflow.StatusPending.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.draftRepo.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	s.logger.Info("Draft created",
		zap.String("draft_id", draft.ID),
		zap.String("listing_id", listingID))

	return draft, nil
}

// GetDraft returns the draft, or a NotFound domain error
func (s *draftService) GetDraft(ctx context.Context, id string) (*entity.Draft, error) {
	draft, err := s.draftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", id, err)
	}
	if draft == nil {
		return nil, workflow.NewNotFound(id)
	}
	return draft, nil
}

// ListDrafts returns drafts with pagination
func (s *draftService) ListDrafts(ctx context.Context, limit, offset int) ([]*entity.Draft, error) {
	return s.draftRepo.List(ctx, limit, offset)
}

// GetHistory returns the draft's full audit trail in append order
func (s *draftService) GetHistory(ctx context.Context, draftID string) ([]*entity.HistoryEntry, error) {
	if _, err := s.GetDraft(ctx, draftID); err != nil {
		return nil, err
	}
	return s.historyRepo.GetByDraftID(ctx, draftID)
}

// ExecuteTransition delegates to the workflow engine
func (s *draftService) ExecuteTransition(ctx context.Context, draftID, transitionName, actorID string, actorRole workflow.Role, params workflow.Params) (*entity.Draft, error) {
	return s.engine.Execute(ctx, draftID, transitionName, actorID, actorRole, params)
}

// AvailableTransitions delegates to the engine's registry projection
func (s *draftService) AvailableTransitions(status workflow.Status, role workflow.Role) []workflow.TransitionView {
	return s.engine.AvailableTransitions(status, role)
}

// CreateListing stores a source listing context
func (s *draftService) CreateListing(ctx context.Context, listing *entity.ListingContext) error {
	if listing.ID == "" {
		listing.ID = newListingID()
	}
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now()
	}
	return s.listingRepo.Create(ctx, listing)
}

// GetListing returns the listing, or a NotFound domain error
func (s *draftService) GetListing(ctx context.Context, id string) (*entity.ListingContext, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
	}
	if listing == nil {
		return nil, workflow.NewNotFound(id)
	}
	return listing, nil
}

func newDraftID() string {
	return "drf_" + randomHex(8)
}

func newListingID() string {
	return "lst_" + randomHex(8)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform is broken; a nanotime
		// suffix still yields a usable unique ID.
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(b)
}
