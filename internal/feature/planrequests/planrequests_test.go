package planrequests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature/featuretest"
)

var pending = []map[string]any{
	{"_id": "p1", "type": "upgrade", "userData": map[string]any{"firstName": "Dana", "lastName": "Ray", "phone": "+4470001"},
		"planData": map[string]any{"name": "Gold", "price": "99.00"}},
	{"_id": "p2", "type": "purchase", "status": "pending", "userData": map[string]any{"firstName": "Eli", "lastName": "Fox", "phone": "+4470002"},
		"planData": map[string]any{"name": "Silver", "price": 49}},
}

func setup(t *testing.T) (*featuretest.Backend, context.Context) {
	t.Helper()
	b := featuretest.NewBackend(t)
	b.Reply(http.MethodGet, "user/pending-plan-requests", http.StatusOK, map[string]any{"success": true, "pendingRequests": pending})
	return b, context.Background()
}

func TestPlanRequests_NeedsAdminToken(t *testing.T) {
	b, ctx := setup(t)
	d, _ := featuretest.Deps(t, b)
	s, err := New(d)
	require.NoError(t, err)

	err = s.Mount(ctx)
	assert.Equal(t, "No admin token found. Please log in.", domain.Message(err, ""))
	assert.Empty(t, b.Calls(http.MethodGet, "user/pending-plan-requests"))
}

func TestPlanRequests_NormalizeAndSearch(t *testing.T) {
	b, ctx := setup(t)
	d, _ := featuretest.Deps(t, b)
	require.NoError(t, d.AdminToken.SetToken(ctx, "admin-1"))
	s, err := New(d)
	require.NoError(t, err)
	require.NoError(t, s.Mount(ctx))

	calls := b.Calls(http.MethodGet, "user/pending-plan-requests")
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer admin-1", calls[0].Auth)

	got, _ := s.View.Find("p1")
	assert.Equal(t, domain.RequestPending, got.Status, "missing status shows as pending")
	assert.Equal(t, "99", got.PlanData.Price.String())

	require.NoError(t, s.View.SetStatusFilter(domain.RequestPending))
	assert.Equal(t, 2, s.View.Snapshot().Filtered)

	s.View.SetSearch("70002")
	snap := s.View.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "p2", snap.Items[0].ID)
}

func TestPlanRequests_Process(t *testing.T) {
	b, ctx := setup(t)
	b.Reply(http.MethodPost, "user/process-plan-request", http.StatusOK, map[string]any{"success": true})
	d, _ := featuretest.Deps(t, b)
	require.NoError(t, d.AdminToken.SetToken(ctx, "admin-1"))
	s, err := New(d)
	require.NoError(t, err)
	require.NoError(t, s.Mount(ctx))

	var ve *domain.ValidationError
	assert.ErrorAs(t, s.View.SetStatus(ctx, "p1", domain.StatusChange{Status: domain.RequestRejected, Reason: "  "}), &ve)
	assert.ErrorAs(t, s.View.SetStatus(ctx, "p1", domain.StatusChange{Status: domain.RequestPending}), &ve)
	assert.Empty(t, b.Calls(http.MethodPost, "user/process-plan-request"))

	require.NoError(t, s.View.SetStatus(ctx, "p1", domain.StatusChange{Status: domain.RequestRejected, Reason: "Payment not received"}))
	require.NoError(t, s.View.SetStatus(ctx, "p2", domain.StatusChange{Status: domain.RequestApproved}))

	calls := b.Calls(http.MethodPost, "user/process-plan-request")
	require.Len(t, calls, 2)
	assert.Equal(t, map[string]any{"requestId": "p1", "status": "rejected", "rejectionReason": "Payment not received"}, calls[0].Body)
	assert.Equal(t, map[string]any{"requestId": "p2", "status": "approved", "rejectionReason": ""}, calls[1].Body)
	assert.Equal(t, "Bearer admin-1", calls[1].Auth)

	got, _ := s.View.Find("p1")
	assert.Equal(t, domain.RequestRejected, got.Status)
	got, _ = s.View.Find("p2")
	assert.Equal(t, domain.RequestApproved, got.Status)
}

func TestPlanRequests_SessionExpired(t *testing.T) {
	b, ctx := setup(t)
	b.Reply(http.MethodPost, "user/process-plan-request", http.StatusUnauthorized, map[string]any{"success": false, "message": "Session expired. Please log in again."})
	d, _ := featuretest.Deps(t, b)
	require.NoError(t, d.AdminToken.SetToken(ctx, "admin-1"))
	s, err := New(d)
	require.NoError(t, err)
	require.NoError(t, s.Mount(ctx))

	err = s.View.SetStatus(ctx, "p1", domain.StatusChange{Status: domain.RequestApproved})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, d.AdminToken.Present(ctx))
	got, _ := s.View.Find("p1")
	assert.Equal(t, domain.RequestPending, got.Status)
}
