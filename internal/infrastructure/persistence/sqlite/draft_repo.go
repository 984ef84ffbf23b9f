package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/application/port"
	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

// DraftRepository implements port.DraftRepository over SQLite
type DraftRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(db *DB, logger *zap.Logger) *DraftRepository {
	return &DraftRepository{
		db:     db.DB,
		logger: logger,
	}
}

const draftColumns = `
	id, listing_id, status, revision_count, quality_score,
	pdf_url, pdf_size_bytes, broker_comments, distribution_channels,
	failure_reason, generated_at, failed_at, reviewed_at, approved_at,
	distributed_at, created_at, updated_at
`

// Create inserts a new draft row
func (r *DraftRepository) Create(ctx context.Context, draft *entity.Draft) error {
	channels, err := encodeChannels(draft.DistributionChannels)
	if err != nil {
		return fmt.Errorf("failed to encode channels: %w", err)
	}

	query := `
		INSERT INTO drafts (
			id, listing_id, status, revision_count, quality_score,
			pdf_url, pdf_size_bytes, broker_comments, distribution_channels,
			failure_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = executorFor(ctx, r.db).ExecContext(ctx, query,
		draft.ID,
		draft.ListingID,
		draft.Status,
		draft.RevisionCount,
		draft.QualityScore,
		draft.PDFURL,
		draft.PDFSizeBytes,
		draft.BrokerComments,
		channels,
		draft.FailureReason,
		draft.CreatedAt,
		draft.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create draft", zap.String("draft_id", draft.ID), zap.Error(err))
		return fmt.Errorf("failed to create draft: %w", err)
	}

	return nil
}

// GetByID retrieves a draft by ID; nil, nil when absent
func (r *DraftRepository) GetByID(ctx context.Context, id string) (*entity.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE id = ?`

	draft, err := scanDraft(executorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get draft by ID", zap.String("draft_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	return draft, nil
}

// List retrieves drafts ordered by creation time with pagination
func (r *DraftRepository) List(ctx context.Context, limit, offset int) ([]*entity.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts ORDER BY created_at ASC LIMIT ? OFFSET ?`

	rows, err := executorFor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list drafts", zap.Error(err))
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*entity.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, draft)
	}

	return drafts, rows.Err()
}

// UpdateWhereStatus applies the patch only where the draft's status still
// equals expectedStatus. The WHERE clause is what makes concurrent
// transitions lose cleanly instead of overwriting each other.
func (r *DraftRepository) UpdateWhereStatus(ctx context.Context, id, expectedStatus string, patch *entity.DraftPatch) (*entity.Draft, error) {
	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	add := func(column string, value interface{}) {
		set = append(set, column+" = ?")
		args = append(args, value)
	}

	if patch.Status != "" {
		add("status", patch.Status)
	}
	if patch.RevisionCount != nil {
		add("revision_count", *patch.RevisionCount)
	}
	if patch.QualityScore != nil {
		add("quality_score", *patch.QualityScore)
	}
	if patch.PDFURL != nil {
		add("pdf_url", *patch.PDFURL)
	}
	if patch.PDFSizeBytes != nil {
		add("pdf_size_bytes", *patch.PDFSizeBytes)
	}
	if patch.BrokerComments != nil {
		add("broker_comments", *patch.BrokerComments)
	}
	if patch.DistributionChannels != nil {
		channels, err := encodeChannels(patch.DistributionChannels)
		if err != nil {
			return nil, fmt.Errorf("failed to encode channels: %w", err)
		}
		add("distribution_channels", channels)
	}
	if patch.FailureReason != nil {
		add("failure_reason", *patch.FailureReason)
	}
	if patch.GeneratedAt != nil {
		add("generated_at", *patch.GeneratedAt)
	}
	if patch.FailedAt != nil {
		add("failed_at", *patch.FailedAt)
	}
	if patch.ReviewedAt != nil {
		add("reviewed_at", *patch.ReviewedAt)
	}
	if patch.ApprovedAt != nil {
		add("approved_at", *patch.ApprovedAt)
	}
	if patch.DistributedAt != nil {
		add("distributed_at", *patch.DistributedAt)
	}
	if patch.ClearFailure {
		set = append(set, "failed_at = NULL", "failure_reason = ''")
	}

	query := "UPDATE drafts SET "
	for i, clause := range set {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += " WHERE id = ? AND status = ?"
	args = append(args, id, expectedStatus)

	result, err := executorFor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update draft",
			zap.String("draft_id", id),
			zap.String("expected_status", expectedStatus),
			zap.Error(err))
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDraft(row rowScanner) (*entity.Draft, error) {
	var draft entity.Draft
	var channels string
	var generatedAt, failedAt, reviewedAt, approvedAt, distributedAt sql.NullTime

	err := row.Scan(
		&draft.ID,
		&draft.ListingID,
		&draft.Status,
		&draft.RevisionCount,
		&draft.QualityScore,
		&draft.PDFURL,
		&draft.PDFSizeBytes,
		&draft.BrokerComments,
		&channels,
		&draft.FailureReason,
		&generatedAt,
		&failedAt,
		&reviewedAt,
		&approvedAt,
		&distributedAt,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if channels != "" {
		if err := json.Unmarshal([]byte(channels), &draft.DistributionChannels); err != nil {
			return nil, fmt.Errorf("failed to decode channels: %w", err)
		}
	}
	assign := func(dst **time.Time, src sql.NullTime) {
		if src.Valid {
			t := src.Time
			*dst = &t
		}
	}
	assign(&draft.GeneratedAt, generatedAt)
	assign(&draft.FailedAt, failedAt)
	assign(&draft.ReviewedAt, reviewedAt)
	assign(&draft.ApprovedAt, approvedAt)
	assign(&draft.DistributedAt, distributedAt)

	return &draft, nil
}

func encodeChannels(channels []string) (string, error) {
	if len(channels) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(channels)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Verify interface compliance
var _ port.DraftRepository = (*DraftRepository)(nil)
