package database

import (
	"fmt"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations holds the full schema history, applied in version order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_approval_items",
		SQL: `
			CREATE TABLE IF NOT EXISTS approval_items (
				id TEXT PRIMARY KEY,
				entity_type TEXT NOT NULL,
				entity_id TEXT NOT NULL,
				reference TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				amount REAL NOT NULL CHECK (amount >= 0),
				status TEXT NOT NULL,
				level TEXT NOT NULL,
				priority TEXT NOT NULL,
				current_approver TEXT NOT NULL DEFAULT '',
				requested_by TEXT NOT NULL,
				requested_at DATETIME NOT NULL,
				sla_due_at DATETIME NOT NULL,
				resolved_at DATETIME,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_approval_items_status ON approval_items(status);
			CREATE INDEX IF NOT EXISTS idx_approval_items_entity_type ON approval_items(entity_type);
			CREATE INDEX IF NOT EXISTS idx_approval_items_level ON approval_items(level);
			CREATE INDEX IF NOT EXISTS idx_approval_items_sla_due_at ON approval_items(sla_due_at);
		`,
	},
	{
		Version: 2,
		Name:    "create_approval_chain_items",
		SQL: `
			CREATE TABLE IF NOT EXISTS approval_chain_items (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				item_id TEXT NOT NULL REFERENCES approval_items(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				level TEXT NOT NULL,
				approver_name TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				approved_at DATETIME,
				notes TEXT NOT NULL DEFAULT '',
				UNIQUE (item_id, position)
			);

			CREATE INDEX IF NOT EXISTS idx_approval_chain_items_item_id ON approval_chain_items(item_id);
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

// RunMigrations executes all pending migrations
func (m *Migrator) RunMigrations() error {
	m.logger.Info("Starting database migrations")

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

		if err := m.apply(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w",
				migration.Version, migration.Name, err)
		}
	}

	m.logger.Info("Database migrations completed")
	return nil
}

// apply runs one migration and records it inside a transaction
func (m *Migrator) apply(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.SQL); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		migration.Version, migration.Name,
	); err != nil {
		return err
	}

	return tx.Commit()
}
