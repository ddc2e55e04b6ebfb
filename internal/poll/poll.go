// Package poll 定时重新拉取（支持工单页每 10 秒刷新一次）
package poll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"affiliate-admin/internal/core/logger"
)

// Task 一个已注册的定时任务；Stop 后回调的 ctx 被取消，且不再触发
type Task interface {
	Stop()
}

type Scheduler interface {
	Every(interval time.Duration, fn func(ctx context.Context)) (Task, error)
}

// Cron 基于 robfig/cron 的调度器，上一轮没跑完就跳过本轮
type Cron struct {
	c   *cron.Cron
	log *zap.Logger
}

func NewCron(log *zap.Logger) *Cron {
	if log == nil {
		log = zap.NewNop()
	}
	var cl cron.Logger = cron.DiscardLogger
	if std, err := logger.ToStdLogger(log.Named("cron"), zapcore.WarnLevel); err == nil {
		cl = cron.PrintfLogger(std)
	}
	return &Cron{
		c: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// MinInterval cron 的 @every 不足一秒会被抬到一秒，两种调度器都直接拒绝
const MinInterval = time.Second

func checkInterval(d time.Duration) error {
	if d < MinInterval {
		return fmt.Errorf("poll interval must be at least %s, got %s", MinInterval, d)
	}
	return nil
}

func (s *Cron) Start() { s.c.Start() }

// Stop 等待正在执行的回调结束
func (s *Cron) Stop() {
	<-s.c.Stop().Done()
}

func (s *Cron) Every(interval time.Duration, fn func(ctx context.Context)) (Task, error) {
	if err := checkInterval(interval); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	id, err := s.c.AddFunc("@every "+interval.String(), func() {
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("schedule every %s: %w", interval, err)
	}
	s.log.Debug("poll task added", zap.Duration("interval", interval), zap.Int("entry", int(id)))
	return &cronTask{s: s, id: id, cancel: cancel}, nil
}

type cronTask struct {
	s      *Cron
	id     cron.EntryID
	cancel context.CancelFunc
	once   sync.Once
}

func (t *cronTask) Stop() {
	t.once.Do(func() {
		t.cancel()
		t.s.c.Remove(t.id)
		t.s.log.Debug("poll task removed", zap.Int("entry", int(t.id)))
	})
}

// Manual 手动驱动的调度器，Tick 同步执行所有未停止的任务
type Manual struct {
	mu    sync.Mutex
	tasks map[*manualTask]struct{}
}

func NewManual() *Manual {
	return &Manual{tasks: map[*manualTask]struct{}{}}
}

func (m *Manual) Every(interval time.Duration, fn func(ctx context.Context)) (Task, error) {
	if err := checkInterval(interval); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &manualTask{m: m, fn: fn, ctx: ctx, cancel: cancel}
	m.mu.Lock()
	m.tasks[t] = struct{}{}
	m.mu.Unlock()
	return t, nil
}

func (m *Manual) Tick() {
	m.mu.Lock()
	tasks := make([]*manualTask, 0, len(m.tasks))
	for t := range m.tasks {
		tasks = append(tasks, t)
	}
	m.mu.Unlock()
	for _, t := range tasks {
		t.fn(t.ctx)
	}
}

// Active 未停止的任务数
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

type manualTask struct {
	m      *Manual
	fn     func(ctx context.Context)
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *manualTask) Stop() {
	t.cancel()
	t.m.mu.Lock()
	delete(t.m.tasks, t)
	t.m.mu.Unlock()
}
