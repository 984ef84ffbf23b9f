package port

import "context"

// Notification is one rendered, addressed message about a committed
// transition, ready for a delivery collaborator.
type Notification struct {
	DraftID    string
	Transition string
	Recipients []string
	Message    string
}

// NotificationSender delivers notifications. Delivery is best-effort; the
// engine never consumes its result.
type NotificationSender interface {
	Send(ctx context.Context, n Notification) error
}

// RecipientResolver translates a coarse role into concrete deliverable
// identities. Resolution lives outside the engine.
type RecipientResolver interface {
	Resolve(ctx context.Context, role string) ([]string, error)
}
