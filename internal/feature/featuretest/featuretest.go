// Package featuretest 页面测试用的假后端和依赖装配
package featuretest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/poll"
	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/repo"
	"affiliate-admin/internal/session"
)

// Request 假后端收到的一次请求
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// Backend 按 "METHOD /path" 分发的假后端，路径相对 /api/v1/
type Backend struct {
	srv *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Request
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: map[string]http.HandlerFunc{}}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *Backend) URL() string { return b.srv.URL + "/api/v1/" }

func (b *Backend) Handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	b.routes[method+" /api/v1/"+path] = h
	b.mu.Unlock()
}

// Reply 固定返回 status + body
func (b *Backend) Reply(method, path string, status int, body any) {
	b.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Calls 按方法和路径取出收到的请求
func (b *Backend) Calls(method, path string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Request
	for _, c := range b.calls {
		if c.Method == method && c.Path == "/api/v1/"+path {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	req := Request{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &req.Body)
	}
	b.mu.Lock()
	b.calls = append(b.calls, req)
	h, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()
	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Route not found"})
		return
	}
	h(w, r)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Deps 用 miniredis 做会话存储、Manual 做轮询调度
func Deps(t *testing.T, b *Backend) (feature.Deps, *poll.Manual) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := repo.NewRedisKV(rdb, "test:")

	client, err := remote.New(remote.Options{BaseURL: b.URL(), Timeout: 2 * time.Second})
	require.NoError(t, err)

	sched := poll.NewManual()
	return feature.Deps{
		Client:     client,
		AdminToken: session.New(store, session.KeyAdminToken),
		Token:      session.New(store, session.KeyToken),
		Email:      session.New(store, session.KeyAdminEmail),
		Scheduler:  sched,
		Logger:     zaptest.NewLogger(t),
	}, sched
}
