package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite/approval-engine/internal/application/dispatcher"
	"github.com/bizsuite/approval-engine/internal/domain/approval"
)

// mockApprovalRepo is an in-memory registry with per-method overrides
type mockApprovalRepo struct {
	mu    sync.Mutex
	items map[string]*approval.ApprovalItem

	insertFunc  func(ctx context.Context, item *approval.ApprovalItem) error
	getByIDFunc func(ctx context.Context, id string) (*approval.ApprovalItem, error)
	updateFunc  func(ctx context.Context, item *approval.ApprovalItem) error
}

func newMockApprovalRepo() *mockApprovalRepo {
	return &mockApprovalRepo{items: make(map[string]*approval.ApprovalItem)}
}

func (m *mockApprovalRepo) Insert(ctx context.Context, item *approval.ApprovalItem) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *mockApprovalRepo) GetByID(ctx context.Context, id string) (*approval.ApprovalItem, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, approval.ErrNotFound
	}
	copied := *item
	copied.Chain = append([]approval.ApprovalChainItem{}, item.Chain...)
	return &copied, nil
}

func (m *mockApprovalRepo) Update(ctx context.Context, item *approval.ApprovalItem) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return approval.ErrNotFound
	}
	copied := *item
	copied.Chain = append([]approval.ApprovalChainItem{}, item.Chain...)
	m.items[item.ID] = &copied
	return nil
}

func (m *mockApprovalRepo) ListPending(ctx context.Context) ([]*approval.ApprovalItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*approval.ApprovalItem
	for _, item := range m.items {
		if item.Status == approval.StatusPending {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *mockApprovalRepo) ListResolved(ctx context.Context, limit int) ([]*approval.ApprovalItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*approval.ApprovalItem
	for _, item := range m.items {
		if item.Status.IsTerminal() {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *mockApprovalRepo) ListAll(ctx context.Context) ([]*approval.ApprovalItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*approval.ApprovalItem
	for _, item := range m.items {
		items = append(items, item)
	}
	return items, nil
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestService(repo *mockApprovalRepo) ApprovalService {
	return NewApprovalService(repo, approval.DefaultSLAConfig(), dispatcher.NewDispatcher(), nopLogger{})
}

func submitPending(t *testing.T, svc ApprovalService, amount float64, priority approval.Priority) *approval.ApprovalItem {
	t.Helper()
	item, err := svc.Submit(context.Background(), SubmitRequest{
		EntityType:  approval.EntityPurchaseOrder,
		EntityID:    "PO-1001",
		Reference:   "PO/2026/1001",
		Title:       "Office chairs",
		Amount:      amount,
		RequestedBy: "j.smith",
		Priority:    priority,
	})
	require.NoError(t, err)
	return item
}

func TestApprovalService_Submit(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)

	item := submitPending(t, svc, 75_000, approval.PriorityNormal)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, approval.StatusPending, item.Status)
	assert.Equal(t, approval.LevelL2, item.Level)
	assert.Equal(t, item.RequestedAt.Add(96*time.Hour), item.SLADueAt)

	require.Len(t, item.Chain, 1)
	assert.Equal(t, approval.LevelL2, item.Chain[0].Level)
	assert.Equal(t, approval.ChainPending, item.Chain[0].Status)
}

func TestApprovalService_Submit_UrgentShortensWindow(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)

	item := submitPending(t, svc, 75_000, approval.PriorityUrgent)
	assert.Equal(t, item.RequestedAt.Add(48*time.Hour), item.SLADueAt)
}

func TestApprovalService_Submit_NegativeAmount(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		EntityType:  approval.EntityInvoice,
		EntityID:    "INV-1",
		Reference:   "INV/1",
		Title:       "Bad invoice",
		Amount:      -1,
		RequestedBy: "j.smith",
	})
	assert.ErrorIs(t, err, approval.ErrInvalidAmount)
	assert.Empty(t, repo.items)
}

func TestApprovalService_Approve(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)
	item := submitPending(t, svc, 75_000, approval.PriorityNormal)

	approved, err := svc.Approve(context.Background(), item.ID, "looks good")
	require.NoError(t, err)

	assert.Equal(t, approval.StatusApproved, approved.Status)
	require.NotNil(t, approved.ResolvedAt)
	require.Len(t, approved.Chain, 1)
	assert.Equal(t, approval.ChainApproved, approved.Chain[0].Status)
	assert.Equal(t, "looks good", approved.Chain[0].Notes)
	require.NotNil(t, approved.Chain[0].ApprovedAt)
}

func TestApprovalService_Approve_NotFound(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)

	_, err := svc.Approve(context.Background(), "missing", "")
	assert.ErrorIs(t, err, approval.ErrNotFound)
}

func TestApprovalService_DecisionsOnResolvedItemsFail(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)

	terminalFixtures := []struct {
		name    string
		prepare func(t *testing.T) string
	}{
		{
			"approved item",
			func(t *testing.T) string {
				item := submitPending(t, svc, 100, approval.PriorityNormal)
				_, err := svc.Approve(context.Background(), item.ID, "")
				require.NoError(t, err)
				return item.ID
			},
		},
		{
			"rejected item",
			func(t *testing.T) string {
				item := submitPending(t, svc, 100, approval.PriorityNormal)
				_, err := svc.Reject(context.Background(), item.ID, "duplicate request")
				require.NoError(t, err)
				return item.ID
			},
		},
	}

	for _, fixture := range terminalFixtures {
		t.Run(fixture.name, func(t *testing.T) {
			id := fixture.prepare(t)

			_, err := svc.Approve(context.Background(), id, "")
			assert.ErrorIs(t, err, approval.ErrInvalidState)

			_, err = svc.Reject(context.Background(), id, "some reason")
			assert.ErrorIs(t, err, approval.ErrInvalidState)

			_, err = svc.Escalate(context.Background(), id, "")
			assert.ErrorIs(t, err, approval.ErrInvalidState)
		})
	}
}

func TestApprovalService_Reject_MissingReason(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)
	item := submitPending(t, svc, 100, approval.PriorityNormal)

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := svc.Reject(context.Background(), item.ID, reason)
		assert.ErrorIs(t, err, approval.ErrMissingReason)
	}

	// No chain entry was written and the item is still pending
	stored, err := svc.(*approvalServiceImpl).repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPending, stored.Status)
	require.Len(t, stored.Chain, 1)
	assert.Equal(t, approval.ChainPending, stored.Chain[0].Status)
}

func TestApprovalService_Reject(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)
	item := submitPending(t, svc, 100, approval.PriorityNormal)

	rejected, err := svc.Reject(context.Background(), item.ID, "missing receipts")
	require.NoError(t, err)

	assert.Equal(t, approval.StatusRejected, rejected.Status)
	require.Len(t, rejected.Chain, 1)
	assert.Equal(t, approval.ChainRejected, rejected.Chain[0].Status)
	assert.Equal(t, "missing receipts", rejected.Chain[0].Notes)
}

func TestApprovalService_Escalate(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)
	item := submitPending(t, svc, 75_000, approval.PriorityNormal)

	escalated, err := svc.Escalate(context.Background(), item.ID, "needs senior sign-off")
	require.NoError(t, err)

	assert.Equal(t, approval.StatusPending, escalated.Status)
	assert.Equal(t, approval.LevelL3, escalated.Level)
	// Deadline re-resolved from the new level, anchored at the escalation time
	assert.Equal(t, escalated.UpdatedAt.Add(72*time.Hour), escalated.SLADueAt)

	require.Len(t, escalated.Chain, 2)
	assert.Equal(t, approval.ChainSkipped, escalated.Chain[0].Status)
	assert.Equal(t, "needs senior sign-off", escalated.Chain[0].Notes)
	assert.Equal(t, approval.LevelL3, escalated.Chain[1].Level)
	assert.Equal(t, approval.ChainPending, escalated.Chain[1].Status)
}

func TestApprovalService_Escalate_SaturatesAtL5(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)
	item := submitPending(t, svc, 2_000_000, approval.PriorityNormal)
	require.Equal(t, approval.LevelL5, item.Level)

	firstDue := item.SLADueAt
	time.Sleep(5 * time.Millisecond)

	escalated, err := svc.Escalate(context.Background(), item.ID, "still waiting")
	require.NoError(t, err)

	// Level stays at the top tier but the deadline is refreshed
	assert.Equal(t, approval.LevelL5, escalated.Level)
	assert.True(t, escalated.SLADueAt.After(firstDue))
	require.Len(t, escalated.Chain, 2)
	assert.Equal(t, approval.LevelL5, escalated.Chain[1].Level)
}

func TestApprovalService_ConcurrentApprove(t *testing.T) {
	repo := newMockApprovalRepo()
	svc := newTestService(repo)
	item := submitPending(t, svc, 100, approval.PriorityNormal)

	// Hold the first mutation inside the registry read so the second
	// call arrives while the per-id lock is taken
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	repo.getByIDFunc = func(ctx context.Context, id string) (*approval.ApprovalItem, error) {
		once.Do(func() {
			close(entered)
			<-release
		})
		repo.mu.Lock()
		stored := *repo.items[id]
		stored.Chain = append([]approval.ApprovalChainItem{}, repo.items[id].Chain...)
		repo.mu.Unlock()
		return &stored, nil
	}

	results := make(chan error, 2)
	go func() {
		_, err := svc.Approve(context.Background(), item.ID, "first")
		results <- err
	}()

	<-entered
	_, busyErr := svc.Approve(context.Background(), item.ID, "second")
	assert.ErrorIs(t, busyErr, approval.ErrBusy)

	close(release)
	require.NoError(t, <-results)

	stored, err := repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, stored.Status)
	assert.Len(t, stored.Chain, 1)
}
