package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/feature/account"
	"affiliate-admin/internal/feature/featuretest"
	"affiliate-admin/internal/feature/users"
	"affiliate-admin/internal/transport/http/router"
	resp "affiliate-admin/internal/transport/http/response"
)

type env struct {
	t       *testing.T
	backend *featuretest.Backend
	deps    feature.Deps
	users   *feature.Screen[domain.User]
	engine  *gin.Engine
}

func userRows(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, map[string]any{
			"_id":       fmt.Sprintf("u%02d", i),
			"firstName": "User",
			"lastName":  fmt.Sprintf("%02d", i),
			"email":     fmt.Sprintf("user%02d@example.com", i),
			"status":    domain.UserActive,
		})
	}
	return out
}

func newEnv(t *testing.T) *env {
	t.Helper()
	b := featuretest.NewBackend(t)
	d, _ := featuretest.Deps(t, b)

	us, err := users.New(d)
	require.NoError(t, err)
	ws := feature.NewWorkspace(us)

	reg := router.NewRegistry()
	reg.Register(account.New(d, ws), us)
	e := router.NewConsoleEngine(zaptest.NewLogger(t), reg, d.AdminToken, router.Options{Mode: gin.TestMode, RequestTimeout: 5 * time.Second})
	return &env{t: t, backend: b, deps: d, users: us, engine: e}
}

func (e *env) login() {
	require.NoError(e.t, e.deps.AdminToken.SetToken(context.Background(), "admin-token"))
}

func (e *env) do(method, path, body string) resp.Resp {
	e.t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	e.engine.ServeHTTP(w, req)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var out resp.Resp
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func data(t *testing.T, r resp.Resp) map[string]any {
	t.Helper()
	m, ok := r.Data.(map[string]any)
	require.True(t, ok, "data is %T", r.Data)
	return m
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":1}`, w.Body.String())
}

func TestConsole_RequiresSession(t *testing.T) {
	e := newEnv(t)
	out := e.do(http.MethodGet, "/console/v1/users", "")
	assert.Equal(t, resp.CodeUnauthorized, out.Code)
	assert.Equal(t, "No admin token found. Please log in.", out.Msg)
	assert.Equal(t, map[string]any{"redirect": "/console/v1/login"}, out.Data)
	assert.Empty(t, e.backend.Calls(http.MethodGet, "user/getAllUser"))
}

func TestConsole_LoginIsPublic(t *testing.T) {
	e := newEnv(t)
	e.backend.Reply(http.MethodPost, "user/adminSendOtp", http.StatusOK, map[string]any{"success": true})

	out := e.do(http.MethodPost, "/console/v1/login", `{"email":"root@example.com"}`)
	require.Equal(t, resp.CodeOK, out.Code, out.Msg)
	assert.Equal(t, map[string]any{"next": "/otp"}, out.Data)

	out = e.do(http.MethodPost, "/console/v1/login", `{"email":"root"}`)
	assert.Equal(t, resp.CodeBadRequest, out.Code)
	assert.Equal(t, "Please enter a valid email address", out.Msg)
}

func TestConsole_ListQuery(t *testing.T) {
	e := newEnv(t)
	e.backend.Reply(http.MethodGet, "user/getAllUser", http.StatusOK, map[string]any{"success": true, "user": userRows(23)})
	e.login()

	out := e.do(http.MethodGet, "/console/v1/users", "")
	require.Equal(t, resp.CodeOK, out.Code, out.Msg)
	d := data(t, out)
	assert.EqualValues(t, 23, d["total"])
	assert.EqualValues(t, 3, d["totalPages"])
	assert.Equal(t, "refetch", d["policy"])
	assert.Len(t, d["items"], 10)

	d = data(t, e.do(http.MethodGet, "/console/v1/users?page=3", ""))
	assert.EqualValues(t, 3, d["page"])
	assert.Len(t, d["items"], 3)

	// 改每页条数回到第 1 页，page 在其后生效
	d = data(t, e.do(http.MethodGet, "/console/v1/users?size=20&page=2", ""))
	assert.EqualValues(t, 2, d["page"])
	assert.EqualValues(t, 20, d["pageSize"])
	assert.Len(t, d["items"], 3)

	d = data(t, e.do(http.MethodGet, "/console/v1/users?q=user07", ""))
	assert.EqualValues(t, 1, d["page"])
	assert.EqualValues(t, 1, d["filtered"])

	out = e.do(http.MethodGet, "/console/v1/users?status=deleted", "")
	assert.Equal(t, resp.CodeBadRequest, out.Code)

	out = e.do(http.MethodGet, "/console/v1/users?size=abc", "")
	assert.Equal(t, resp.CodeBadRequest, out.Code)

	assert.Len(t, e.backend.Calls(http.MethodGet, "user/getAllUser"), 1, "mounted once")
	e.do(http.MethodGet, "/console/v1/users?refresh=1", "")
	assert.Len(t, e.backend.Calls(http.MethodGet, "user/getAllUser"), 2)
}

func TestConsole_ListFetchError(t *testing.T) {
	e := newEnv(t)
	e.backend.Reply(http.MethodGet, "user/getAllUser", http.StatusInternalServerError, map[string]any{"success": false})
	e.login()

	out := e.do(http.MethodGet, "/console/v1/users", "")
	assert.Equal(t, resp.CodeServerError, out.Code)
	assert.Equal(t, "Error fetching users. Please try again.", out.Msg)

	// 错误标记持续存在，不会渲染空表格
	out = e.do(http.MethodGet, "/console/v1/users?page=2", "")
	assert.Equal(t, resp.CodeServerError, out.Code)
}

func TestConsole_Mutations(t *testing.T) {
	e := newEnv(t)
	e.backend.Reply(http.MethodGet, "user/getAllUser", http.StatusOK, map[string]any{"success": true, "user": userRows(3)})
	e.backend.Reply(http.MethodPatch, "user/updateUserById/u02", http.StatusOK, map[string]any{"success": true})
	e.backend.Reply(http.MethodDelete, "user/deleteUserById/u03", http.StatusOK, map[string]any{"success": true})
	e.login()
	e.do(http.MethodGet, "/console/v1/users", "")

	out := e.do(http.MethodPut, "/console/v1/users/u02/status", `{"status":"inactive"}`)
	require.Equal(t, resp.CodeOK, out.Code, out.Msg)
	rec := data(t, out)["record"].(map[string]any)
	assert.Equal(t, "inactive", rec["status"])

	out = e.do(http.MethodGet, "/console/v1/users/u02", "")
	assert.Equal(t, "inactive", data(t, out)["status"])
	out = e.do(http.MethodGet, "/console/v1/users/u99", "")
	assert.Equal(t, resp.CodeNotFound, out.Code)

	out = e.do(http.MethodPatch, "/console/v1/users/u02", `{"status":"active"}`)
	assert.Equal(t, resp.CodeBadRequest, out.Code, "status is not an editable field")

	out = e.do(http.MethodDelete, "/console/v1/users/u03", "")
	assert.Equal(t, resp.CodeBadRequest, out.Code)
	assert.Empty(t, e.backend.Calls(http.MethodDelete, "user/deleteUserById/u03"))

	out = e.do(http.MethodDelete, "/console/v1/users/u03?confirm=true", "")
	require.Equal(t, resp.CodeOK, out.Code, out.Msg)
	assert.Len(t, e.backend.Calls(http.MethodGet, "user/getAllUser"), 2, "refetch after delete")
}

func TestConsole_BusyRecord(t *testing.T) {
	e := newEnv(t)
	e.backend.Reply(http.MethodGet, "user/getAllUser", http.StatusOK, map[string]any{"success": true, "user": userRows(2)})
	release := make(chan struct{})
	e.backend.Handle(http.MethodPatch, "user/updateUserById/u01", func(w http.ResponseWriter, _ *http.Request) {
		<-release
		featuretest.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	e.login()
	e.do(http.MethodGet, "/console/v1/users", "")

	done := make(chan resp.Resp, 1)
	go func() {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/console/v1/users/u01/status", strings.NewReader(`{"status":"inactive"}`))
		req.Header.Set("Content-Type", "application/json")
		e.engine.ServeHTTP(w, req)
		var out resp.Resp
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		done <- out
	}()
	require.Eventually(t, func() bool { return e.users.View.Busy("u01") }, 2*time.Second, 5*time.Millisecond)

	out := e.do(http.MethodPut, "/console/v1/users/u01/status", `{"status":"pending"}`)
	assert.Equal(t, resp.CodeConflict, out.Code)

	d := data(t, e.do(http.MethodGet, "/console/v1/users", ""))
	assert.Equal(t, []any{"u01"}, d["submitting"])

	close(release)
	first := <-done
	assert.Equal(t, resp.CodeOK, first.Code)
	assert.False(t, e.users.View.Busy("u01"))
}

func TestConsole_LogoutThenLocked(t *testing.T) {
	e := newEnv(t)
	e.backend.Reply(http.MethodGet, "user/getAllUser", http.StatusOK, map[string]any{"success": true, "user": userRows(1)})
	e.login()
	e.do(http.MethodGet, "/console/v1/users", "")

	out := e.do(http.MethodGet, "/console/v1/dashboard", "")
	require.Equal(t, resp.CodeOK, out.Code)
	screens := data(t, out)["screens"].([]any)
	require.Len(t, screens, 1)
	assert.Equal(t, true, screens[0].(map[string]any)["loaded"])

	out = e.do(http.MethodPost, "/console/v1/logout", `{"confirm":false}`)
	assert.Equal(t, resp.CodeBadRequest, out.Code)

	out = e.do(http.MethodPost, "/console/v1/logout", `{"confirm":true}`)
	require.Equal(t, resp.CodeOK, out.Code)
	assert.Equal(t, map[string]any{"redirect": "/console/v1/login"}, out.Data)
	assert.False(t, e.users.Mounted())

	out = e.do(http.MethodGet, "/console/v1/users", "")
	assert.Equal(t, resp.CodeUnauthorized, out.Code)
}
