package entity

import "time"

// HistoryEntry is one committed transition in the audit trail. Rows are
// append-only: never updated or deleted once written.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	DraftID    string    `json:"draft_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Comments   string    `json:"comments,omitempty"`
	Metadata   string    `json:"metadata,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
