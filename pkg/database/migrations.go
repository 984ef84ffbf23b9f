package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations holds the full schema history in order. New schema changes are
// appended here with the next version number, never edited in place.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_listings",
		SQL: `
			CREATE TABLE IF NOT EXISTS listings (
				id TEXT PRIMARY KEY,
				address TEXT NOT NULL DEFAULT '',
				listing_type TEXT NOT NULL DEFAULT '',
				broker_contact TEXT NOT NULL DEFAULT '',
				photo_count INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_drafts",
		SQL: `
			CREATE TABLE IF NOT EXISTS drafts (
				id TEXT PRIMARY KEY,
				listing_id TEXT NOT NULL,
				status TEXT NOT NULL,
				revision_count INTEGER NOT NULL DEFAULT 0,
				quality_score REAL NOT NULL DEFAULT 0,
				pdf_url TEXT NOT NULL DEFAULT '',
				pdf_size_bytes INTEGER NOT NULL DEFAULT 0,
				broker_comments TEXT NOT NULL DEFAULT '',
				distribution_channels TEXT NOT NULL DEFAULT '',
				failure_reason TEXT NOT NULL DEFAULT '',
				generated_at DATETIME,
				failed_at DATETIME,
				reviewed_at DATETIME,
				approved_at DATETIME,
				distributed_at DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status);
			CREATE INDEX IF NOT EXISTS idx_drafts_listing_id ON drafts(listing_id);
		`,
	},
	{
		Version: 3,
		Name:    "create_draft_history",
		SQL: `
			CREATE TABLE IF NOT EXISTS draft_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				draft_id TEXT NOT NULL,
				from_status TEXT NOT NULL,
				to_status TEXT NOT NULL,
				actor_id TEXT NOT NULL,
				actor_role TEXT NOT NULL,
				comments TEXT NOT NULL DEFAULT '',
				metadata TEXT NOT NULL DEFAULT '',
				timestamp DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_draft_history_draft_id ON draft_history(draft_id);
		`,
	},
}

// Migrator handles database migrations
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

// createMigrationsTable creates the migrations tracking table
func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(query)
	return err
}

// getAppliedMigrations returns the list of applied migration versions
func (m *Migrator) getAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// RunMigrations applies all pending migrations
func (m *Migrator) RunMigrations() error {
	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			m.logger.Debug("Skipping applied migration",
				zap.Int("version", migration.Version),
				zap.String("name", migration.Name))
			continue
		}

		m.logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))

		if err := m.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	m.logger.Info("Database migrations completed")
	return nil
}

// applyMigration applies a single migration within a transaction
func (m *Migrator) applyMigration(migration Migration) error {
	return m.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}

		_, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}

		return nil
	})
}
