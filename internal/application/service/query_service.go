package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bizsuite/approval-engine/internal/application/port"
	"github.com/bizsuite/approval-engine/internal/domain/approval"
)

// QueryService is the read surface over the registry. Every view and
// counter is computed from the current registry state on each call; no
// result is cached, so no invalidation signal is needed.
type QueryService interface {
	ListPending(ctx context.Context, filter approval.Filter) ([]*approval.ApprovalItem, error)
	PendingView(ctx context.Context, filter approval.Filter) ([]approval.Group, error)
	GetStats(ctx context.Context) (*approval.Stats, error)
	GetHistory(ctx context.Context, limit int) ([]*approval.ApprovalItem, error)
	GetDetails(ctx context.Context, id string) (*approval.ApprovalItem, error)
}

type queryServiceImpl struct {
	repo   port.ApprovalRepository
	nowFn  func() time.Time
	logger Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(repo port.ApprovalRepository, logger Logger) QueryService {
	return &queryServiceImpl{
		repo:   repo,
		nowFn:  time.Now,
		logger: logger,
	}
}

// ListPending returns pending items matching the filter, oldest first
func (s *queryServiceImpl) ListPending(ctx context.Context, filter approval.Filter) ([]*approval.ApprovalItem, error) {
	items, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.Error("Failed to list pending items", "error", err)
		return nil, fmt.Errorf("list pending: %w", err)
	}

	now := s.nowFn()
	filtered := make([]*approval.ApprovalItem, 0, len(items))
	for _, item := range items {
		if filter.Matches(item, now) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// PendingView returns the filtered pending items partitioned by entity
// type in first-seen order
func (s *queryServiceImpl) PendingView(ctx context.Context, filter approval.Filter) ([]approval.Group, error) {
	items, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.Error("Failed to build pending view", "error", err)
		return nil, fmt.Errorf("pending view: %w", err)
	}
	return approval.BuildView(items, filter, s.nowFn()), nil
}

// GetStats recomputes the aggregate counters from the full registry
func (s *queryServiceImpl) GetStats(ctx context.Context) (*approval.Stats, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load registry snapshot", "error", err)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	stats := approval.ComputeStats(items, s.nowFn())
	return &stats, nil
}

// GetHistory returns terminal items, most recently resolved first
func (s *queryServiceImpl) GetHistory(ctx context.Context, limit int) ([]*approval.ApprovalItem, error) {
	if limit <= 0 {
		limit = 50
	}
	items, err := s.repo.ListResolved(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list history", "error", err, "limit", limit)
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

// GetDetails returns a single item with its full chain
func (s *queryServiceImpl) GetDetails(ctx context.Context, id string) (*approval.ApprovalItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}
