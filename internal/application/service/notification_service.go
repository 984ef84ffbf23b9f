package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/application/dispatcher"
	"github.com/openlistings/collateral-workflow/internal/application/port"
	"github.com/openlistings/collateral-workflow/internal/cache"
	"github.com/openlistings/collateral-workflow/internal/domain/event"
	"github.com/openlistings/collateral-workflow/internal/domain/workflow"
)

// NotificationService turns committed transitions into notifications: it
// subscribes to draft.transitioned, looks up the static mapping, resolves
// recipient roles, renders the template and hands off to the sender.
// Everything here is best-effort; the transition has already committed.
type NotificationService interface {
	Register(d dispatcher.Dispatcher)
	HandleTransition(ctx context.Context, evt *event.Event) error

	// InvalidateRecipients drops the cached resolution for a role, e.g.
	// after a roster change.
	InvalidateRecipients(role string)
}

type notificationService struct {
	resolver   port.RecipientResolver
	sender     port.NotificationSender
	recipients *cache.TTL[[]string]
	logger     *zap.Logger
}

// NewNotificationService creates a notification service. cacheTTL bounds how
// long role -> recipient resolutions are reused.
func NewNotificationService(
	resolver port.RecipientResolver,
	sender port.NotificationSender,
	cacheTTL time.Duration,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		resolver:   resolver,
		sender:     sender,
		recipients: cache.NewTTL[[]string](cacheTTL),
		logger:     logger,
	}
}

// Register subscribes the service to transition events
func (s *notificationService) Register(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeDraftTransitioned, "notification-service", s.HandleTransition)
}

// HandleTransition notifies the mapped recipients for the transition, if any
func (s *notificationService) HandleTransition(ctx context.Context, evt *event.Event) error {
	transition := evt.GetPayloadString("transition")
	spec, ok := workflow.NotificationFor(transition)
	if !ok {
		return nil
	}

	recipients, err := s.resolveRecipients(ctx, spec.Recipients)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients for %s: %w", transition, err)
	}
	if len(recipients) == 0 {
		s.logger.Info("No recipients for notification",
			zap.String("draft_id", evt.DraftID),
			zap.String("transition", transition))
		return nil
	}

	n := port.Notification{
		DraftID:    evt.DraftID,
		Transition: transition,
		Recipients: recipients,
		Message:    renderTemplate(spec.Template, evt),
	}

	if err := s.sender.Send(ctx, n); err != nil {
		// Logged, never propagated past the dispatcher: delivery failure
		// must not look like a transition failure.
		s.logger.Error("Notification delivery failed",
			zap.String("draft_id", evt.DraftID),
			zap.String("transition", transition),
			zap.Error(err))
		return err
	}

	return nil
}

// InvalidateRecipients drops the cached resolution for a role
func (s *notificationService) InvalidateRecipients(role string) {
	s.recipients.Invalidate(role)
}

func (s *notificationService) resolveRecipients(ctx context.Context, roles []workflow.Role) ([]string, error) {
	var out []string
	for _, role := range roles {
		ids, ok := s.recipients.Get(role.String())
		if !ok {
			var err error
			ids, err = s.resolver.Resolve(ctx, role.String())
			if err != nil {
				return nil, err
			}
			s.recipients.Set(role.String(), ids)
		}
		out = append(out, ids...)
	}
	return out, nil
}

// renderTemplate substitutes {{key}} placeholders from the event payload.
// draft_id comes from the event itself.
func renderTemplate(template string, evt *event.Event) string {
	pairs := []string{"{{draft_id}}", evt.DraftID}
	for key, val := range evt.Payload {
		pairs = append(pairs, "{{"+key+"}}", fmt.Sprintf("%v", val))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
