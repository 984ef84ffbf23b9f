// Package notify provides delivery collaborators for transition
// notifications. The default sender writes to the structured log, which is
// enough for local operation and keeps the delivery port exercised without an
// external channel.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/application/port"
)

// LogSender writes notifications to the application log
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-backed notification sender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification
func (s *LogSender) Send(ctx context.Context, n port.Notification) error {
	s.logger.Info("Notification",
		zap.String("draft_id", n.DraftID),
		zap.String("transition", n.Transition),
		zap.Strings("recipients", n.Recipients),
		zap.String("message", n.Message))
	return nil
}

// StaticResolver resolves roles to recipients from a fixed mapping loaded
// from configuration.
type StaticResolver struct {
	recipients map[string][]string
}

// NewStaticResolver creates a resolver over a role to recipients mapping
func NewStaticResolver(recipients map[string][]string) *StaticResolver {
	return &StaticResolver{recipients: recipients}
}

// Resolve returns the configured identities for a role. An unconfigured role
// resolves to no recipients rather than an error.
func (r *StaticResolver) Resolve(ctx context.Context, role string) ([]string, error) {
	ids := r.recipients[role]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// Verify interface compliance
var (
	_ port.NotificationSender = (*LogSender)(nil)
	_ port.RecipientResolver  = (*StaticResolver)(nil)
)
