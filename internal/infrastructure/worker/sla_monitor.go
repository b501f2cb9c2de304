package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bizsuite/approval-engine/internal/application/dispatcher"
	"github.com/bizsuite/approval-engine/internal/application/port"
	"github.com/bizsuite/approval-engine/internal/domain/event"
)

// SLAMonitor periodically sweeps pending items and emits a lifecycle event
// the first time an item is observed past its due date. Breach state itself
// is always derived from the due date, never stored; the monitor only
// surfaces the transition so subscribers can re-notify approvers.
type SLAMonitor struct {
	repo     port.ApprovalRepository
	events   dispatcher.Dispatcher
	interval time.Duration
	logger   *zap.Logger
	nowFn    func() time.Time

	mu       sync.Mutex
	notified map[string]struct{}

	wg   sync.WaitGroup
	stop chan struct{}
}

// NewSLAMonitor creates an SLA monitor sweeping at the given interval
func NewSLAMonitor(repo port.ApprovalRepository, events dispatcher.Dispatcher, interval time.Duration, logger *zap.Logger) *SLAMonitor {
	return &SLAMonitor{
		repo:     repo,
		events:   events,
		interval: interval,
		logger:   logger,
		nowFn:    time.Now,
		notified: make(map[string]struct{}),
		stop:     make(chan struct{}),
	}
}

// Name returns the worker name
func (m *SLAMonitor) Name() string {
	return "sla-monitor"
}

// Start begins the periodic sweep loop
func (m *SLAMonitor) Start(ctx context.Context) error {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.sweep(ctx)
			}
		}
	}()

	return nil
}

// Stop signals the sweep loop to exit and waits for it
func (m *SLAMonitor) Stop() error {
	close(m.stop)
	m.wg.Wait()
	return nil
}

// sweep checks all pending items and dispatches a breach event for items
// newly past their due date
func (m *SLAMonitor) sweep(ctx context.Context) {
	items, err := m.repo.ListPending(ctx)
	if err != nil {
		m.logger.Error("SLA sweep failed to list pending items", zap.Error(err))
		return
	}

	now := m.nowFn()
	pending := make(map[string]struct{}, len(items))

	for _, item := range items {
		pending[item.ID] = struct{}{}

		if !item.IsSLABreached(now) {
			continue
		}
		if m.alreadyNotified(item.ID) {
			continue
		}

		m.logger.Warn("Approval item breached its SLA",
			zap.String("item_id", item.ID),
			zap.String("entity_type", item.EntityType.String()),
			zap.String("level", item.Level.String()),
			zap.Time("sla_due_at", item.SLADueAt))

		m.events.DispatchAsync(ctx, event.New(event.TypeItemSLABreached, item, map[string]interface{}{
			"approver": item.CurrentApprover,
			"due_at":   item.SLADueAt.Format(time.RFC3339),
		}))
		m.markNotified(item.ID)
	}

	m.prune(pending)
}

func (m *SLAMonitor) alreadyNotified(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.notified[id]
	return ok
}

func (m *SLAMonitor) markNotified(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified[id] = struct{}{}
}

// prune drops tracking for items that are no longer pending, so an item
// re-entering the queue after escalation is eligible to notify again
func (m *SLAMonitor) prune(pending map[string]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.notified {
		if _, ok := pending[id]; !ok {
			delete(m.notified, id)
		}
	}
}

var _ Worker = (*SLAMonitor)(nil)
