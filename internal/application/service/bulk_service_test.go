package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite/approval-engine/internal/domain/approval"
)

func newTestBulkService(t *testing.T) (BulkService, ApprovalService, *mockApprovalRepo) {
	t.Helper()
	repo := newMockApprovalRepo()
	approvals := newTestService(repo)
	return NewBulkService(approvals, nopLogger{}), approvals, repo
}

func TestBulkService_BulkApprove(t *testing.T) {
	bulk, approvals, repo := newTestBulkService(t)

	a := submitPending(t, approvals, 100, approval.PriorityNormal)
	b := submitPending(t, approvals, 200, approval.PriorityNormal)
	c := submitPending(t, approvals, 300, approval.PriorityNormal)

	result, err := bulk.BulkApprove(context.Background(), []string{a.ID, b.ID, c.ID}, "quarter close")
	require.NoError(t, err)

	assert.Equal(t, 3, result.SucceededCount)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, result.SucceededIDs)
	assert.Empty(t, result.Failed)

	for _, id := range []string{a.ID, b.ID, c.ID} {
		stored, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, approval.StatusApproved, stored.Status)
	}
}

func TestBulkService_BulkApprove_PartialFailure(t *testing.T) {
	bulk, approvals, repo := newTestBulkService(t)

	a := submitPending(t, approvals, 100, approval.PriorityNormal)
	b := submitPending(t, approvals, 200, approval.PriorityNormal)
	c := submitPending(t, approvals, 300, approval.PriorityNormal)

	// b is already resolved before the batch runs
	_, err := approvals.Approve(context.Background(), b.ID, "")
	require.NoError(t, err)

	result, err := bulk.BulkApprove(context.Background(), []string{a.ID, b.ID, c.ID}, "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.SucceededCount)
	assert.Equal(t, []string{a.ID, c.ID}, result.SucceededIDs)
	assert.Equal(t, map[string]string{b.ID: "INVALID_STATE"}, result.Failed)

	// The failure did not block the unrelated items
	for _, id := range []string{a.ID, c.ID} {
		stored, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, approval.StatusApproved, stored.Status)
	}
}

func TestBulkService_BulkApprove_UnknownID(t *testing.T) {
	bulk, approvals, _ := newTestBulkService(t)
	a := submitPending(t, approvals, 100, approval.PriorityNormal)

	result, err := bulk.BulkApprove(context.Background(), []string{a.ID, "ghost"}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SucceededCount)
	assert.Equal(t, map[string]string{"ghost": "NOT_FOUND"}, result.Failed)
}

func TestBulkService_Deduplicates(t *testing.T) {
	bulk, approvals, _ := newTestBulkService(t)
	a := submitPending(t, approvals, 100, approval.PriorityNormal)

	result, err := bulk.BulkApprove(context.Background(), []string{a.ID, a.ID, a.ID}, "")
	require.NoError(t, err)

	// Duplicates collapse before processing, so the repeats never hit
	// an already-approved item
	assert.Equal(t, 1, result.SucceededCount)
	assert.Empty(t, result.Failed)
}

func TestBulkService_EmptyInput(t *testing.T) {
	bulk, _, _ := newTestBulkService(t)

	result, err := bulk.BulkApprove(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Zero(t, result.SucceededCount)
	assert.Empty(t, result.SucceededIDs)
	assert.Empty(t, result.Failed)
}

func TestBulkService_BulkReject(t *testing.T) {
	bulk, approvals, repo := newTestBulkService(t)

	a := submitPending(t, approvals, 100, approval.PriorityNormal)
	b := submitPending(t, approvals, 200, approval.PriorityNormal)

	result, err := bulk.BulkReject(context.Background(), []string{a.ID, b.ID}, "budget freeze")
	require.NoError(t, err)
	assert.Equal(t, 2, result.SucceededCount)

	stored, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, stored.Status)
	assert.Equal(t, "budget freeze", stored.Chain[0].Notes)
}

func TestBulkService_BulkReject_MissingReason(t *testing.T) {
	bulk, approvals, repo := newTestBulkService(t)
	a := submitPending(t, approvals, 100, approval.PriorityNormal)

	// The batch-level guard fires before any id is touched
	for _, reason := range []string{"", "   "} {
		_, err := bulk.BulkReject(context.Background(), []string{a.ID}, reason)
		assert.ErrorIs(t, err, approval.ErrMissingReason)
	}

	stored, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPending, stored.Status)
}
