package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/application/port"
	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

// ListingRepository implements port.ListingRepository over SQLite
type ListingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *DB, logger *zap.Logger) *ListingRepository {
	return &ListingRepository{
		db:     db.DB,
		logger: logger,
	}
}

// Create inserts a new listing context
func (r *ListingRepository) Create(ctx context.Context, listing *entity.ListingContext) error {
	query := `
		INSERT INTO listings (
			id, address, listing_type, broker_contact, photo_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := executorFor(ctx, r.db).ExecContext(ctx, query,
		listing.ID,
		listing.Address,
		listing.ListingType,
		listing.BrokerContact,
		listing.PhotoCount,
		listing.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// GetByID retrieves a listing by ID; nil, nil when absent
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*entity.ListingContext, error) {
	query := `
		SELECT id, address, listing_type, broker_contact, photo_count, created_at
		FROM listings
		WHERE id = ?
	`

	var listing entity.ListingContext
	err := executorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&listing.ID,
		&listing.Address,
		&listing.ListingType,
		&listing.BrokerContact,
		&listing.PhotoCount,
		&listing.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	return &listing, nil
}

// Verify interface compliance
var (
	_ port.ListingRepository = (*ListingRepository)(nil)
	_ port.ListingProvider   = (*ListingRepository)(nil)
)
