package service

import (
	"context"
	"strings"

	"github.com/bizsuite/approval-engine/internal/domain/approval"
)

// BulkResult reports the per-id outcome of a bulk decision
type BulkResult struct {
	SucceededIDs   []string          `json:"succeeded_ids"`
	Failed         map[string]string `json:"failed"`
	SucceededCount int               `json:"succeeded_count"`
}

// BulkService applies one decision to many approval items with
// best-effort, per-item semantics: a stale or missing id never blocks
// the rest of the batch
type BulkService interface {
	BulkApprove(ctx context.Context, ids []string, notes string) (*BulkResult, error)
	BulkReject(ctx context.Context, ids []string, reason string) (*BulkResult, error)
}

type bulkServiceImpl struct {
	approvals ApprovalService
	logger    Logger
}

// NewBulkService creates a new BulkService
func NewBulkService(approvals ApprovalService, logger Logger) BulkService {
	return &bulkServiceImpl{
		approvals: approvals,
		logger:    logger,
	}
}

// BulkApprove approves each id independently. Notes are optional.
func (s *bulkServiceImpl) BulkApprove(ctx context.Context, ids []string, notes string) (*BulkResult, error) {
	result := s.apply(ctx, ids, func(id string) error {
		_, err := s.approvals.Approve(ctx, id, notes)
		return err
	})

	s.logger.Info("Bulk approve completed",
		"requested", len(ids),
		"succeeded", result.SucceededCount,
		"failed", len(result.Failed),
	)
	return result, nil
}

// BulkReject rejects each id independently. The reason is checked once,
// before any id is touched.
func (s *bulkServiceImpl) BulkReject(ctx context.Context, ids []string, reason string) (*BulkResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, approval.ErrMissingReason
	}

	result := s.apply(ctx, ids, func(id string) error {
		_, err := s.approvals.Reject(ctx, id, reason)
		return err
	})

	s.logger.Info("Bulk reject completed",
		"requested", len(ids),
		"succeeded", result.SucceededCount,
		"failed", len(result.Failed),
	)
	return result, nil
}

// apply deduplicates the ids preserving first-seen order and runs the
// decision for each. Failures are isolated into the result map; nothing
// is rolled back, because the items are unrelated business documents.
func (s *bulkServiceImpl) apply(ctx context.Context, ids []string, decide func(id string) error) *BulkResult {
	result := &BulkResult{
		SucceededIDs: []string{},
		Failed:       make(map[string]string),
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		if err := decide(id); err != nil {
			result.Failed[id] = approval.ErrorKind(err)
			continue
		}
		result.SucceededIDs = append(result.SucceededIDs, id)
		result.SucceededCount++
	}

	return result
}
