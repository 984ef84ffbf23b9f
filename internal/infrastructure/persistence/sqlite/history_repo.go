package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/application/port"
	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

// HistoryRepository implements port.HistoryRepository over SQLite.
// The table is append-only: there are no UPDATE or DELETE paths.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db.DB,
		logger: logger,
	}
}

// Append records one accepted transition
func (r *HistoryRepository) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	query := `
		INSERT INTO draft_history (
			draft_id, from_status, to_status, actor_id, actor_role,
			comments, metadata, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := executorFor(ctx, r.db).ExecContext(ctx, query,
		entry.DraftID,
		entry.FromStatus,
		entry.ToStatus,
		entry.ActorID,
		entry.ActorRole,
		entry.Comments,
		entry.Metadata,
		entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to append history entry",
			zap.String("draft_id", entry.DraftID),
			zap.Error(err))
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}

	return nil
}

// GetByDraftID returns a draft's history in insertion order
func (r *HistoryRepository) GetByDraftID(ctx context.Context, draftID string) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT id, draft_id, from_status, to_status, actor_id, actor_role,
		       comments, metadata, timestamp
		FROM draft_history
		WHERE draft_id = ?
		ORDER BY id ASC
	`

	rows, err := executorFor(ctx, r.db).QueryContext(ctx, query, draftID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.String("draft_id", draftID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.HistoryEntry
	for rows.Next() {
		var entry entity.HistoryEntry
		err := rows.Scan(
			&entry.ID,
			&entry.DraftID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.ActorID,
			&entry.ActorRole,
			&entry.Comments,
			&entry.Metadata,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
