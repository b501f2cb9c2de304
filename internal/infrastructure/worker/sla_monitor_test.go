package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bizsuite/approval-engine/internal/application/dispatcher"
	"github.com/bizsuite/approval-engine/internal/domain/approval"
	"github.com/bizsuite/approval-engine/internal/domain/event"
)

type stubPendingRepo struct {
	items []*approval.ApprovalItem
}

func (r *stubPendingRepo) Insert(ctx context.Context, item *approval.ApprovalItem) error { return nil }
func (r *stubPendingRepo) GetByID(ctx context.Context, id string) (*approval.ApprovalItem, error) {
	return nil, approval.ErrNotFound
}
func (r *stubPendingRepo) Update(ctx context.Context, item *approval.ApprovalItem) error { return nil }
func (r *stubPendingRepo) ListPending(ctx context.Context) ([]*approval.ApprovalItem, error) {
	return r.items, nil
}
func (r *stubPendingRepo) ListResolved(ctx context.Context, limit int) ([]*approval.ApprovalItem, error) {
	return nil, nil
}
func (r *stubPendingRepo) ListAll(ctx context.Context) ([]*approval.ApprovalItem, error) {
	return r.items, nil
}

type capturedEvents struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	events []*event.Event
}

func (c *capturedEvents) handler(ctx context.Context, evt *event.Event) error {
	c.mu.Lock()
	c.events = append(c.events, evt)
	c.mu.Unlock()
	c.wg.Done()
	return nil
}

func (c *capturedEvents) snapshot() []*event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*event.Event{}, c.events...)
}

func pendingItem(id string, dueAt time.Time) *approval.ApprovalItem {
	return &approval.ApprovalItem{
		ID:              id,
		EntityType:      approval.EntityInvoice,
		Status:          approval.StatusPending,
		Level:           approval.LevelL2,
		CurrentApprover: "dept.head",
		SLADueAt:        dueAt,
	}
}

func TestSLAMonitor_Sweep_EmitsBreachEventOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	repo := &stubPendingRepo{items: []*approval.ApprovalItem{
		pendingItem("overdue", now.Add(-2*time.Hour)),
		pendingItem("on-track", now.Add(48*time.Hour)),
	}}

	events := dispatcher.NewDispatcher()
	defer events.Close()

	captured := &capturedEvents{}
	captured.wg.Add(1)
	events.Subscribe(event.TypeItemSLABreached, captured.handler)

	monitor := NewSLAMonitor(repo, events, time.Minute, zap.NewNop())
	monitor.nowFn = func() time.Time { return now }

	monitor.sweep(context.Background())
	captured.wg.Wait()

	got := captured.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "overdue", got[0].ItemID)
	assert.Equal(t, "dept.head", got[0].GetPayloadString("approver"))

	// second sweep over the same snapshot must not re-emit
	monitor.sweep(context.Background())
	assert.Len(t, captured.snapshot(), 1)
}

func TestSLAMonitor_Sweep_ReEligibleAfterLeavingQueue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	overdue := pendingItem("item-1", now.Add(-time.Hour))

	repo := &stubPendingRepo{items: []*approval.ApprovalItem{overdue}}
	events := dispatcher.NewDispatcher()
	defer events.Close()

	captured := &capturedEvents{}
	captured.wg.Add(1)
	events.Subscribe(event.TypeItemSLABreached, captured.handler)

	monitor := NewSLAMonitor(repo, events, time.Minute, zap.NewNop())
	monitor.nowFn = func() time.Time { return now }

	monitor.sweep(context.Background())
	captured.wg.Wait()
	require.Len(t, captured.snapshot(), 1)

	// item leaves the queue (resolved or escalated), tracking is pruned
	repo.items = nil
	monitor.sweep(context.Background())

	// it comes back overdue, e.g. re-submitted under the same id
	captured.wg.Add(1)
	repo.items = []*approval.ApprovalItem{overdue}
	monitor.sweep(context.Background())
	captured.wg.Wait()

	assert.Len(t, captured.snapshot(), 2)
}

func TestSLAMonitor_StartStop(t *testing.T) {
	repo := &stubPendingRepo{}
	events := dispatcher.NewDispatcher()
	defer events.Close()

	monitor := NewSLAMonitor(repo, events, 10*time.Millisecond, zap.NewNop())

	require.NoError(t, monitor.Start(context.Background()))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, monitor.Stop())
}

func TestManager_RegisterStartStop(t *testing.T) {
	logger := zap.NewNop()
	manager := NewManager(logger)

	repo := &stubPendingRepo{}
	events := dispatcher.NewDispatcher()
	defer events.Close()

	manager.Register(NewSLAMonitor(repo, events, time.Minute, logger))

	require.NoError(t, manager.StartAll(context.Background()))
	assert.True(t, manager.IsRunning())
	assert.Error(t, manager.StartAll(context.Background()), "double start should fail")

	require.NoError(t, manager.StopAll())
	assert.False(t, manager.IsRunning())
}
