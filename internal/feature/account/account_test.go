package account

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affiliate-admin/internal/core/auth"
	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/feature/featuretest"
	"affiliate-admin/internal/feature/support"
)

func issue(t *testing.T, id string) string {
	t.Helper()
	j := &auth.JWTer{Secret: []byte("test"), Issuer: "backend", TTL: time.Hour}
	tok, err := j.Issue(id, "root@example.com", "admin")
	require.NoError(t, err)
	return tok
}

func TestLogin_EmailThenOTP(t *testing.T) {
	b := featuretest.NewBackend(t)
	b.Reply(http.MethodPost, "user/adminSendOtp", http.StatusOK, map[string]any{"success": true, "message": "OTP sent"})
	tok := issue(t, "admin-7")
	b.Reply(http.MethodPost, "user/adminVerifyOtp", http.StatusOK, map[string]any{"success": true, "token": tok})

	d, _ := featuretest.Deps(t, b)
	s := New(d, nil)
	ctx := context.Background()

	var ve *domain.ValidationError
	assert.ErrorAs(t, s.SendOTP(ctx, "not-an-email"), &ve)
	assert.Equal(t, "Please enter a valid email address", ve.Message)
	assert.Empty(t, b.Calls(http.MethodPost, "user/adminSendOtp"))

	err := s.VerifyOTP(ctx, "123456")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Please request an OTP first", ve.Message)

	require.NoError(t, s.SendOTP(ctx, "  root@example.com "))
	calls := b.Calls(http.MethodPost, "user/adminSendOtp")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"email": "root@example.com"}, calls[0].Body)

	for _, bad := range []string{"", "12345", "1234567", "12a456"} {
		err := s.VerifyOTP(ctx, bad)
		require.ErrorAs(t, err, &ve, bad)
		assert.Equal(t, "Please enter a valid 6-digit OTP", ve.Message)
	}
	assert.Empty(t, b.Calls(http.MethodPost, "user/adminVerifyOtp"))

	require.NoError(t, s.VerifyOTP(ctx, "042042"))
	calls = b.Calls(http.MethodPost, "user/adminVerifyOtp")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"email": "root@example.com", "otp": "042042"}, calls[0].Body)

	got, err := d.AdminToken.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
	got, err = d.Token.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestVerifyOTP_NoTokenReturned(t *testing.T) {
	b := featuretest.NewBackend(t)
	b.Reply(http.MethodPost, "user/adminVerifyOtp", http.StatusOK, map[string]any{"success": true})
	d, _ := featuretest.Deps(t, b)
	ctx := context.Background()
	require.NoError(t, d.Email.SetToken(ctx, "root@example.com"))

	err := New(d, nil).VerifyOTP(ctx, "111111")
	assert.Equal(t, "Login failed. No token returned.", domain.Message(err, ""))
	assert.False(t, d.AdminToken.Present(ctx))
}

func TestVerifyOTP_Rejected(t *testing.T) {
	b := featuretest.NewBackend(t)
	b.Reply(http.MethodPost, "user/adminVerifyOtp", http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid OTP"})
	d, _ := featuretest.Deps(t, b)
	ctx := context.Background()
	require.NoError(t, d.Email.SetToken(ctx, "root@example.com"))

	err := New(d, nil).VerifyOTP(ctx, "111111")
	assert.Equal(t, "Invalid OTP", domain.Message(err, ""))
	assert.False(t, d.Token.Present(ctx))
}

func TestProfile(t *testing.T) {
	b := featuretest.NewBackend(t)
	b.Reply(http.MethodGet, "user/getAdminById/admin-7", http.StatusOK, map[string]any{
		"success": true,
		"user":    map[string]any{"_id": "admin-7", "firstName": "Root", "email": "root@example.com"},
	})
	d, _ := featuretest.Deps(t, b)
	ctx := context.Background()
	s := New(d, nil)

	_, err := s.Profile(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, "No admin token found. Please log in.", domain.Message(err, ""))

	require.NoError(t, d.Token.SetToken(ctx, issue(t, "admin-7")))
	p, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Root", p.FirstName)

	require.NoError(t, d.Token.SetToken(ctx, "garbage"))
	_, err = s.Profile(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	b := featuretest.NewBackend(t)
	b.Reply(http.MethodPatch, "user/adminChangePassword", http.StatusOK, map[string]any{"success": true})
	d, _ := featuretest.Deps(t, b)
	ctx := context.Background()
	require.NoError(t, d.Token.SetToken(ctx, issue(t, "admin-7")))
	s := New(d, nil)

	var ve *domain.ValidationError
	err := s.ChangePassword(ctx, PasswordChange{CurrentPassword: "old", NewPassword: "n1", ConfirmPassword: "n2"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "New passwords do not match.", ve.Message)
	assert.Equal(t, "confirmPassword", ve.Field)

	err = s.ChangePassword(ctx, PasswordChange{NewPassword: "n1", ConfirmPassword: "n1"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "currentPassword", ve.Field)
	assert.Empty(t, b.Calls(http.MethodPatch, "user/adminChangePassword"))

	require.NoError(t, s.ChangePassword(ctx, PasswordChange{CurrentPassword: "old", NewPassword: "n1", ConfirmPassword: "n1"}))
	calls := b.Calls(http.MethodPatch, "user/adminChangePassword")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{
		"userId": "admin-7", "oldPassword": "old", "newPassword": "n1", "confirmPassword": "n1",
	}, calls[0].Body)
}

func TestLogout_UnmountsScreens(t *testing.T) {
	b := featuretest.NewBackend(t)
	b.Reply(http.MethodGet, "support/getQueries", http.StatusOK, map[string]any{"data": []map[string]any{{"_id": "q1"}}})
	d, sched := featuretest.Deps(t, b)
	ctx := context.Background()

	sq, err := support.New(d)
	require.NoError(t, err)
	ws := feature.NewWorkspace(sq)
	s := New(d, ws)

	require.NoError(t, sq.Mount(ctx))
	require.NoError(t, d.AdminToken.SetToken(ctx, "a"))
	require.NoError(t, d.Token.SetToken(ctx, "a"))
	require.NoError(t, d.Email.SetToken(ctx, "root@example.com"))

	dash := s.Dashboard()
	require.Len(t, dash, 1)
	assert.Equal(t, feature.Summary{Name: support.Name, Total: 1, Loaded: true, Polling: true}, dash[0])

	assert.ErrorIs(t, s.Logout(ctx, false), domain.ErrNotConfirmed)
	assert.True(t, d.Token.Present(ctx))

	require.NoError(t, s.Logout(ctx, true))
	assert.False(t, d.AdminToken.Present(ctx))
	assert.False(t, d.Token.Present(ctx))
	assert.True(t, d.Email.Present(ctx), "email is kept for the next login")
	assert.False(t, sq.Mounted())
	assert.Equal(t, 0, sched.Active())
	assert.False(t, s.Dashboard()[0].Loaded)
}
