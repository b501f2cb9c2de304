package port

import (
	"context"

	"github.com/bizsuite/approval-engine/internal/domain/approval"
)

// ApprovalRepository defines persistence operations for the approval registry.
// The registry performs no business validation; preconditions are the
// decision processor's job.
type ApprovalRepository interface {
	// Insert stores a new item together with its chain entries
	Insert(ctx context.Context, item *approval.ApprovalItem) error

	// GetByID returns the item with its chain, or approval.ErrNotFound
	GetByID(ctx context.Context, id string) (*approval.ApprovalItem, error)

	// Update fully replaces the item and its chain entries
	Update(ctx context.Context, item *approval.ApprovalItem) error

	// ListPending returns all non-terminal items, oldest first
	ListPending(ctx context.Context) ([]*approval.ApprovalItem, error)

	// ListResolved returns terminal items, most recently resolved first
	ListResolved(ctx context.Context, limit int) ([]*approval.ApprovalItem, error)

	// ListAll returns the full registry snapshot, oldest first
	ListAll(ctx context.Context) ([]*approval.ApprovalItem, error)
}
