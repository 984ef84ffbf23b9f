package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/application/dispatcher"
	"github.com/openlistings/collateral-workflow/internal/application/port"
	"github.com/openlistings/collateral-workflow/internal/domain/entity"
	"github.com/openlistings/collateral-workflow/internal/domain/event"
	"github.com/openlistings/collateral-workflow/internal/domain/workflow"
)

// errRaceLost aborts the transaction when the conditional update matched no
// row; it never escapes Execute.
var errRaceLost = errors.New("conditional update matched no row")

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	registry    *workflow.Registry
	draftRepo   port.DraftRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	listings    port.ListingProvider
	dispatcher  dispatcher.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures the workflow engine
type Option func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting transition events
func WithDispatcher(d dispatcher.Dispatcher) Option {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(e *engineImpl) {
		e.now = now
	}
}

// New creates a workflow engine over the given registry and collaborators
func New(
	registry *workflow.Registry,
	draftRepo port.DraftRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	listings port.ListingProvider,
	logger *zap.Logger,
	opts ...Option,
) Engine {
	e := &engineImpl{
		registry:    registry,
		draftRepo:   draftRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		listings:    listings,
		logger:      logger,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs one transition request. Every check short-circuits with its
// own error kind, and nothing is persisted before the conditional update.
func (e *engineImpl) Execute(ctx context.Context, draftID, transitionName, actorID string, actorRole workflow.Role, params workflow.Params) (*entity.Draft, error) {
	t, ok := e.registry.Lookup(transitionName)
	if !ok {
		return nil, workflow.NewUnknownTransition(transitionName)
	}

	if !t.Allows(actorRole) {
		e.logger.Warn("Transition rejected: role not permitted",
			zap.String("draft_id", draftID),
			zap.String("transition", transitionName),
			zap.String("actor_role", actorRole.String()))
		return nil, workflow.NewUnauthorized(actorRole, transitionName)
	}

	draft, err := e.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", draftID, err)
	}
	if draft == nil {
		return nil, workflow.NewNotFound(draftID)
	}

	if draft.Status != t.From.String() {
		return nil, workflow.NewInvalidState(transitionName, workflow.Status(draft.Status), t.From)
	}

	guardResult := workflow.GuardResult{Valid: true}
	if t.Guard != nil {
		listing, err := e.listingContext(ctx, draft)
		if err != nil {
			return nil, fmt.Errorf("failed to load listing context for draft %s: %w", draftID, err)
		}
		guardResult = t.Guard(workflow.GuardInput{
			Draft:   draft.Clone(),
			Listing: listing,
			Params:  params,
		})
		if !guardResult.Valid {
			e.logger.Info("Transition rejected by guard",
				zap.String("draft_id", draftID),
				zap.String("transition", transitionName),
				zap.Strings("reasons", guardResult.Reasons))
			return nil, workflow.NewGuardFailed(transitionName, guardResult.Reasons)
		}
	}

	now := e.now()
	patch := &entity.DraftPatch{}
	if t.Effect != nil {
		patch = t.Effect(draft.Clone(), params, now)
	}
	patch.Status = t.To.String()

	metadata, err := transitionMetadata(transitionName, guardResult)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transition metadata: %w", err)
	}

	// Conditional write and history append commit together. The WHERE
	// status clause closes the load/check/write race: a concurrent winner
	// leaves zero rows for the loser.
	var updated *entity.Draft
	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		updated, err = e.draftRepo.UpdateWhereStatus(txCtx, draftID, t.From.String(), patch)
		if err != nil {
			return fmt.Errorf("failed to update draft %s: %w", draftID, err)
		}
		if updated == nil {
			return errRaceLost
		}

		entry := &entity.HistoryEntry{
			DraftID:    draftID,
			FromStatus: t.From.String(),
			ToStatus:   t.To.String(),
			ActorID:    actorID,
			ActorRole:  actorRole.String(),
			Comments:   params.GetString("comments"),
			Metadata:   metadata,
			Timestamp:  now,
		}
		if err := e.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append history for draft %s: %w", draftID, err)
		}
		return nil
	})

	if errors.Is(err, errRaceLost) {
		return nil, e.raceLostError(ctx, draftID, transitionName, t.From)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Info("Transition committed",
		zap.String("draft_id", draftID),
		zap.String("transition", transitionName),
		zap.String("from", t.From.String()),
		zap.String("to", t.To.String()),
		zap.String("actor_id", actorID),
		zap.String("actor_role", actorRole.String()))

	e.emit(ctx, transitionName, t, updated, actorID, actorRole, params)

	return updated, nil
}

// AvailableTransitions projects the registry for the given status and role
func (e *engineImpl) AvailableTransitions(status workflow.Status, role workflow.Role) []workflow.TransitionView {
	return e.registry.AvailableTransitions(status, role)
}

// listingContext fetches the draft's source listing, tolerating drafts with
// no listing reference.
func (e *engineImpl) listingContext(ctx context.Context, draft *entity.Draft) (*entity.ListingContext, error) {
	if e.listings == nil || draft.ListingID == "" {
		return nil, nil
	}
	return e.listings.GetByID(ctx, draft.ListingID)
}

// raceLostError re-reads the draft so the InvalidState error can report the
// actual status the winner left behind.
func (e *engineImpl) raceLostError(ctx context.Context, draftID, transitionName string, expected workflow.Status) error {
	actual := workflow.Status("")
	if current, err := e.draftRepo.GetByID(ctx, draftID); err == nil && current != nil {
		actual = workflow.Status(current.Status)
	}
	e.logger.Warn("Transition lost conditional-update race",
		zap.String("draft_id", draftID),
		zap.String("transition", transitionName),
		zap.String("expected", expected.String()),
		zap.String("actual", actual.String()))
	return workflow.NewInvalidState(transitionName, actual, expected)
}

// emit fires the transitioned event asynchronously. Delivery failure is the
// subscriber's problem; the transition has already committed.
func (e *engineImpl) emit(ctx context.Context, transitionName string, t *workflow.Transition, draft *entity.Draft, actorID string, actorRole workflow.Role, params workflow.Params) {
	if e.dispatcher == nil {
		return
	}
	evt := event.NewEvent(event.TypeDraftTransitioned, draft.ID, map[string]interface{}{
		"transition":     transitionName,
		"from":           t.From.String(),
		"to":             t.To.String(),
		"actor_id":       actorID,
		"actor_role":     actorRole.String(),
		"comments":       params.GetString("comments"),
		"quality_score":  draft.QualityScore,
		"failure_reason": draft.FailureReason,
		"channels":       strings.Join(draft.DistributionChannels, ", "),
	})
	// Handlers outlive the request; its cancellation must not reach them.
	e.dispatcher.DispatchAsync(context.WithoutCancel(ctx), evt)
}

// transitionMetadata records the transition name and guard verdict in the
// history entry.
func transitionMetadata(name string, result workflow.GuardResult) (string, error) {
	raw, err := json.Marshal(map[string]interface{}{
		"transition": name,
		"guard":      result,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
