// Package engine orchestrates guarded workflow transitions for drafts:
// role check, state check, guard, effect, conditional persist, audit append,
// notification dispatch.
package engine

import (
	"context"

	"github.com/openlistings/collateral-workflow/internal/domain/entity"
	"github.com/openlistings/collateral-workflow/internal/domain/workflow"
)

// Engine executes registered transitions against drafts
type Engine interface {
	// Execute runs one transition request end to end and returns the
	// updated draft. Domain failures come back as *workflow.Error; anything
	// else is an infrastructure failure.
	Execute(ctx context.Context, draftID, transitionName, actorID string, actorRole workflow.Role, params workflow.Params) (*entity.Draft, error)

	// AvailableTransitions projects the registry for presentation layers.
	// Pure and side-effect free; execution re-validates independently.
	AvailableTransitions(status workflow.Status, role workflow.Role) []workflow.TransitionView
}
