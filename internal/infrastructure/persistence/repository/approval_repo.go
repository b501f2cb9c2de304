package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bizsuite/approval-engine/internal/application/port"
	"github.com/bizsuite/approval-engine/internal/domain/approval"
)

// ApprovalRepository implements port.ApprovalRepository on sqlite
type ApprovalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *sql.DB, logger *zap.Logger) port.ApprovalRepository {
	return &ApprovalRepository{
		db:     db,
		logger: logger,
	}
}

const itemColumns = `
	id, entity_type, entity_id, reference, title, description,
	amount, status, level, priority, current_approver,
	requested_by, requested_at, sla_due_at, resolved_at,
	created_at, updated_at
`

// Insert stores a new item together with its chain entries
func (r *ApprovalRepository) Insert(ctx context.Context, item *approval.ApprovalItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO approval_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		item.ID,
		item.EntityType,
		item.EntityID,
		item.Reference,
		item.Title,
		item.Description,
		item.Amount,
		item.Status,
		item.Level,
		item.Priority,
		item.CurrentApprover,
		item.RequestedBy,
		item.RequestedAt,
		item.SLADueAt,
		nullTime(item.ResolvedAt),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert approval item", zap.String("id", item.ID), zap.Error(err))
		return fmt.Errorf("insert approval item: %w", err)
	}

	if err := r.insertChain(ctx, tx, item.ID, item.Chain); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// GetByID returns the item with its chain, or approval.ErrNotFound
func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*approval.ApprovalItem, error) {
	query := `SELECT ` + itemColumns + ` FROM approval_items WHERE id = ?`

	item, err := r.scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, approval.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get approval item", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get approval item: %w", err)
	}

	chain, err := r.loadChain(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Chain = chain
	return item, nil
}

// Update fully replaces the item and its chain entries
func (r *ApprovalRepository) Update(ctx context.Context, item *approval.ApprovalItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE approval_items SET
			entity_type = ?, entity_id = ?, reference = ?, title = ?, description = ?,
			amount = ?, status = ?, level = ?, priority = ?, current_approver = ?,
			requested_by = ?, requested_at = ?, sla_due_at = ?, resolved_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		item.EntityType,
		item.EntityID,
		item.Reference,
		item.Title,
		item.Description,
		item.Amount,
		item.Status,
		item.Level,
		item.Priority,
		item.CurrentApprover,
		item.RequestedBy,
		item.RequestedAt,
		item.SLADueAt,
		nullTime(item.ResolvedAt),
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update approval item", zap.String("id", item.ID), zap.Error(err))
		return fmt.Errorf("update approval item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if affected == 0 {
		return approval.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM approval_chain_items WHERE item_id = ?`, item.ID); err != nil {
		return fmt.Errorf("clear chain: %w", err)
	}
	if err := r.insertChain(ctx, tx, item.ID, item.Chain); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// ListPending returns all non-terminal items, oldest first
func (r *ApprovalRepository) ListPending(ctx context.Context) ([]*approval.ApprovalItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM approval_items
		WHERE status = ?
		ORDER BY requested_at ASC, id ASC
	`
	return r.list(ctx, query, approval.StatusPending)
}

// ListResolved returns terminal items, most recently resolved first
func (r *ApprovalRepository) ListResolved(ctx context.Context, limit int) ([]*approval.ApprovalItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM approval_items
		WHERE status IN (?, ?)
		ORDER BY resolved_at DESC, id ASC
		LIMIT ?
	`
	return r.list(ctx, query, approval.StatusApproved, approval.StatusRejected, limit)
}

// ListAll returns the full registry snapshot, oldest first
func (r *ApprovalRepository) ListAll(ctx context.Context) ([]*approval.ApprovalItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM approval_items
		ORDER BY requested_at ASC, id ASC
	`
	return r.list(ctx, query)
}

func (r *ApprovalRepository) list(ctx context.Context, query string, args ...interface{}) ([]*approval.ApprovalItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list approval items", zap.Error(err))
		return nil, fmt.Errorf("list approval items: %w", err)
	}
	defer rows.Close()

	var items []*approval.ApprovalItem
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approval item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range items {
		chain, err := r.loadChain(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		item.Chain = chain
	}
	return items, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *ApprovalRepository) scanItem(row scanner) (*approval.ApprovalItem, error) {
	var item approval.ApprovalItem
	var resolvedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.EntityType,
		&item.EntityID,
		&item.Reference,
		&item.Title,
		&item.Description,
		&item.Amount,
		&item.Status,
		&item.Level,
		&item.Priority,
		&item.CurrentApprover,
		&item.RequestedBy,
		&item.RequestedAt,
		&item.SLADueAt,
		&resolvedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resolvedAt.Valid {
		item.ResolvedAt = &resolvedAt.Time
	}
	return &item, nil
}

func (r *ApprovalRepository) insertChain(ctx context.Context, tx *sql.Tx, itemID string, chain []approval.ApprovalChainItem) error {
	query := `
		INSERT INTO approval_chain_items (
			item_id, position, level, approver_name, status, approved_at, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, entry := range chain {
		_, err := tx.ExecContext(ctx, query,
			itemID,
			i,
			entry.Level,
			entry.ApproverName,
			entry.Status,
			nullTime(entry.ApprovedAt),
			entry.Notes,
		)
		if err != nil {
			r.logger.Error("Failed to insert chain entry", zap.String("item_id", itemID), zap.Int("position", i), zap.Error(err))
			return fmt.Errorf("insert chain entry: %w", err)
		}
	}
	return nil
}

func (r *ApprovalRepository) loadChain(ctx context.Context, itemID string) ([]approval.ApprovalChainItem, error) {
	query := `
		SELECT level, approver_name, status, approved_at, notes
		FROM approval_chain_items
		WHERE item_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("load chain: %w", err)
	}
	defer rows.Close()

	var chain []approval.ApprovalChainItem
	for rows.Next() {
		var entry approval.ApprovalChainItem
		var approvedAt sql.NullTime

		err := rows.Scan(
			&entry.Level,
			&entry.ApproverName,
			&entry.Status,
			&approvedAt,
			&entry.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan chain entry: %w", err)
		}
		if approvedAt.Valid {
			entry.ApprovedAt = &approvedAt.Time
		}
		chain = append(chain, entry)
	}
	return chain, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Verify interface compliance
var _ port.ApprovalRepository = (*ApprovalRepository)(nil)
