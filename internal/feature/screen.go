// Package feature 把每个实体的列表页组装成可挂载的页面：远端集合 + 列表状态 + 路由 + （可选）轮询。
package feature

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"affiliate-admin/internal/core/config"
	"affiliate-admin/internal/listview"
	"affiliate-admin/internal/poll"
	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/session"
	"affiliate-admin/internal/transport/http/handler"
)

// Deps 各页面共享的依赖
type Deps struct {
	Client     *remote.Client
	AdminToken *session.Session // adminToken
	Token      *session.Session // token
	Email      *session.Session // adminEmail
	Config     *config.Config
	Scheduler  poll.Scheduler
	Logger     *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// ListConfig 读取页面的对账策略和每页条数
func (d Deps) ListConfig(name string) (listview.Policy, int, error) {
	if d.Config == nil {
		return listview.Refetch, listview.DefaultPageSize, nil
	}
	sc := d.Config.ScreenFor(name)
	p, err := listview.ParsePolicy(sc.Policy)
	if err != nil {
		return p, 0, fmt.Errorf("screen %s: %w", name, err)
	}
	return p, sc.PageSize, nil
}

// Module 可挂载的页面
type Module interface {
	Name() string
	Mount(ctx context.Context) error
	Unmount()
	Summary() Summary
	MountConsole(g *gin.RouterGroup)
}

// Summary 仪表盘上的一张卡片
type Summary struct {
	Name    string `json:"name"`
	Total   int    `json:"total"`
	Loaded  bool   `json:"loaded"`
	Polling bool   `json:"polling"`
	Error   string `json:"error,omitempty"`
}

// Screen 一个实体的列表页
type Screen[E any] struct {
	View *listview.View[E]
	Ops  handler.Ops

	sched    poll.Scheduler
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	mounted bool
	task    poll.Task
}

func NewScreen[E any](v *listview.View[E], ops handler.Ops, log *zap.Logger) *Screen[E] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Screen[E]{View: v, Ops: ops, log: log.With(zap.String("screen", v.Name()))}
}

// WithPolling 挂载后每隔 interval 重新拉取一次
func (s *Screen[E]) WithPolling(sched poll.Scheduler, interval time.Duration) *Screen[E] {
	s.sched = sched
	s.interval = interval
	return s
}

func (s *Screen[E]) Name() string { return s.View.Name() }

// PollInterval 0 表示不轮询
func (s *Screen[E]) PollInterval() time.Duration {
	if s.sched == nil {
		return 0
	}
	return s.interval
}

// Mount 首屏拉取；配置了轮询则同时启动。拉取失败不影响挂载，错误留在列表状态里。
func (s *Screen[E]) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return nil
	}
	s.mounted = true
	if s.sched != nil && s.interval > 0 {
		task, err := s.sched.Every(s.interval, func(ctx context.Context) {
			if err := s.View.Load(ctx); err != nil {
				s.log.Debug("poll fetch failed", zap.Error(err))
			}
		})
		if err != nil {
			s.mounted = false
			s.mu.Unlock()
			return err
		}
		s.task = task
	}
	s.mu.Unlock()

	s.log.Info("screen mounted", zap.Duration("poll", s.interval))
	return s.View.Load(ctx)
}

// Ensure 实现 handler.Lifecycle
func (s *Screen[E]) Ensure(ctx context.Context) error {
	s.mu.Lock()
	mounted := s.mounted
	s.mu.Unlock()
	if mounted {
		return nil
	}
	return s.Mount(ctx)
}

// Unmount 停止轮询并丢弃集合
func (s *Screen[E]) Unmount() {
	s.mu.Lock()
	if s.task != nil {
		s.task.Stop()
		s.task = nil
	}
	wasMounted := s.mounted
	s.mounted = false
	s.mu.Unlock()

	s.View.Reset()
	if wasMounted {
		s.log.Info("screen unmounted")
	}
}

func (s *Screen[E]) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

func (s *Screen[E]) Summary() Summary {
	snap := s.View.Snapshot()
	s.mu.Lock()
	polling := s.task != nil
	s.mu.Unlock()
	return Summary{Name: s.Name(), Total: snap.Total, Loaded: snap.Loaded, Polling: polling, Error: snap.Error}
}

func (s *Screen[E]) MountConsole(g *gin.RouterGroup) {
	handler.NewScreen(s.View, s.Ops, s).Mount(g)
}
