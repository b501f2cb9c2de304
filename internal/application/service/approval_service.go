package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bizsuite/approval-engine/internal/application/dispatcher"
	"github.com/bizsuite/approval-engine/internal/application/port"
	"github.com/bizsuite/approval-engine/internal/domain/approval"
	"github.com/bizsuite/approval-engine/internal/domain/event"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SubmitRequest carries the fields an external business module provides
// when it submits a document for approval
type SubmitRequest struct {
	EntityType  approval.EntityType
	EntityID    string
	Reference   string
	Title       string
	Description string
	Amount      float64
	RequestedBy string
	Priority    approval.Priority
}

// ApprovalService is the single-item mutation surface of the engine:
// item creation plus the approve / reject / escalate decisions
type ApprovalService interface {
	Submit(ctx context.Context, req SubmitRequest) (*approval.ApprovalItem, error)
	Approve(ctx context.Context, id, notes string) (*approval.ApprovalItem, error)
	Reject(ctx context.Context, id, reason string) (*approval.ApprovalItem, error)
	Escalate(ctx context.Context, id, notes string) (*approval.ApprovalItem, error)
}

type approvalServiceImpl struct {
	repo   port.ApprovalRepository
	sla    approval.SLAConfig
	events dispatcher.Dispatcher
	locks  *idLock
	nowFn  func() time.Time
	logger Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(repo port.ApprovalRepository, sla approval.SLAConfig, events dispatcher.Dispatcher, logger Logger) ApprovalService {
	return &approvalServiceImpl{
		repo:   repo,
		sla:    sla,
		events: events,
		locks:  newIDLock(),
		nowFn:  time.Now,
		logger: logger,
	}
}

// Submit creates a new PENDING item with its level resolved from the
// amount and its deadline computed from level and priority
func (s *approvalServiceImpl) Submit(ctx context.Context, req SubmitRequest) (*approval.ApprovalItem, error) {
	level, err := approval.ResolveLevel(req.Amount)
	if err != nil {
		s.logger.Error("Failed to resolve level", "error", err, "amount", req.Amount)
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = approval.PriorityNormal
	}

	now := s.nowFn()
	item := &approval.ApprovalItem{
		ID:          uuid.NewString(),
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Reference:   req.Reference,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Status:      approval.StatusPending,
		Level:       level,
		Priority:    priority,
		RequestedBy: req.RequestedBy,
		RequestedAt: now,
		SLADueAt:    s.sla.ComputeDue(now, level, priority),
		Chain: []approval.ApprovalChainItem{
			{Level: level, Status: approval.ChainPending},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		s.logger.Error("Failed to store approval item", "error", err, "id", item.ID)
		return nil, fmt.Errorf("store approval item: %w", err)
	}

	s.logger.Info("Approval item submitted",
		"id", item.ID,
		"entity_type", item.EntityType.String(),
		"level", item.Level.String(),
		"amount", item.Amount,
	)
	s.events.DispatchAsync(ctx, event.New(event.TypeItemSubmitted, item, map[string]interface{}{
		"level":  item.Level.String(),
		"amount": item.Amount,
	}))
	return item, nil
}

// Approve resolves a PENDING item as APPROVED and records the decision
// on the chain entry for the current level
func (s *approvalServiceImpl) Approve(ctx context.Context, id, notes string) (*approval.ApprovalItem, error) {
	return s.decide(ctx, id, "approve", event.TypeItemApproved, func(item *approval.ApprovalItem, now time.Time) {
		item.Status = approval.StatusApproved
		item.ResolvedAt = &now
		entry := item.CurrentChainEntry()
		item.Chain[entry].Status = approval.ChainApproved
		item.Chain[entry].ApprovedAt = &now
		item.Chain[entry].Notes = notes
	})
}

// Reject resolves a PENDING item as REJECTED. The reason is mandatory
// and is recorded as the chain entry's notes.
func (s *approvalServiceImpl) Reject(ctx context.Context, id, reason string) (*approval.ApprovalItem, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, approval.ErrMissingReason
	}
	return s.decide(ctx, id, "reject", event.TypeItemRejected, func(item *approval.ApprovalItem, now time.Time) {
		item.Status = approval.StatusRejected
		item.ResolvedAt = &now
		entry := item.CurrentChainEntry()
		item.Chain[entry].Status = approval.ChainRejected
		item.Chain[entry].ApprovedAt = &now
		item.Chain[entry].Notes = reason
	})
}

// Escalate moves a PENDING item to the next level with a fresh deadline.
// The current chain entry is marked SKIPPED and a new PENDING entry is
// appended; history is never rewritten. The level saturates at L5, where
// a further escalation only extends the deadline.
func (s *approvalServiceImpl) Escalate(ctx context.Context, id, notes string) (*approval.ApprovalItem, error) {
	return s.decide(ctx, id, "escalate", event.TypeItemEscalated, func(item *approval.ApprovalItem, now time.Time) {
		entry := item.CurrentChainEntry()
		item.Chain[entry].Status = approval.ChainSkipped
		item.Chain[entry].Notes = notes

		nextLevel := item.Level.Next()
		item.Level = nextLevel
		item.Status = approval.StatusPending
		item.SLADueAt = s.sla.ComputeDue(now, nextLevel, item.Priority)
		item.Chain = append(item.Chain, approval.ApprovalChainItem{
			Level:  nextLevel,
			Status: approval.ChainPending,
		})
	})
}

// decide runs one single-flight mutation: acquire the per-id lock, check
// the PENDING precondition, apply the transition, commit. Once mutate has
// run, the commit is attempted unconditionally; there is no mid-mutation
// cancellation.
func (s *approvalServiceImpl) decide(ctx context.Context, id, action string, eventType event.Type, mutate func(item *approval.ApprovalItem, now time.Time)) (*approval.ApprovalItem, error) {
	if !s.locks.TryAcquire(id) {
		s.logger.Info("Concurrent mutation rejected", "id", id, "action", action)
		return nil, approval.ErrBusy
	}
	defer s.locks.Release(id)

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != approval.StatusPending {
		return nil, fmt.Errorf("%s %s in status %s: %w", action, id, item.Status, approval.ErrInvalidState)
	}

	now := s.nowFn()
	mutate(item, now)
	item.UpdatedAt = now

	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error("Failed to commit decision", "error", err, "id", id, "action", action)
		return nil, fmt.Errorf("commit %s: %w", action, err)
	}

	s.logger.Info("Decision recorded",
		"id", id,
		"action", action,
		"status", item.Status.String(),
		"level", item.Level.String(),
	)
	s.events.DispatchAsync(ctx, event.New(eventType, item, map[string]interface{}{
		"status": item.Status.String(),
		"level":  item.Level.String(),
	}))
	return item, nil
}
