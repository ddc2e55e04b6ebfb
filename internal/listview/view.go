// Package listview 列表页的客户端状态：集合缓存、搜索/状态筛选、分页以及变更后的对账。
package listview

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"affiliate-admin/internal/domain"
)

// Policy 变更成功后的对账方式，同一页面必须统一
type Policy int

const (
	Refetch    Policy = iota // 重新拉取整个集合
	Optimistic               // 本地按 ID 就地修补
)

func (p Policy) String() string {
	if p == Optimistic {
		return "optimistic"
	}
	return "refetch"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "refetch":
		return Refetch, nil
	case "optimistic":
		return Optimistic, nil
	}
	return Refetch, fmt.Errorf("unknown reconciliation policy %q", s)
}

// Source 远端集合（remote.Collection 实现）
type Source[E any] interface {
	ListAll(ctx context.Context) ([]E, error)
	GetByID(ctx context.Context, id string) (E, error)
	Update(ctx context.Context, id string, fields map[string]any) (*E, error)
	Remove(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, ch domain.StatusChange) (*E, error)
}

// Config 一个列表页的全部差异点
type Config[E any] struct {
	Name          string
	Source        Source[E]
	ID            func(E) string
	Status        func(E) (string, bool) // nil 表示该实体没有状态字段
	Search        func(E) []string
	Statuses      []string // 状态枚举（封闭集合）
	Editable      []string // 编辑表单允许提交的 JSON 字段
	Policy        Policy
	PageSize      int
	Normalize     func(E) E                          // 拉取/回写后的记录统一加工
	CheckStatus   func(ch domain.StatusChange) error // 额外的状态变更校验
	FetchFallback string                             // 拉取失败且后端没给 message 时的提示
	Logger        *zap.Logger
}

type View[E any] struct {
	cfg Config[E]
	log *zap.Logger

	mu       sync.Mutex
	items    []E
	loaded   bool
	pending  int
	err      error
	query    Query
	win      Window
	seq      uint64 // 拉取与本地修补共用的递增序号
	applied  uint64 // 最近一次生效的序号，更旧的拉取结果直接丢弃
	inflight map[string]struct{}
}

func New[E any](cfg Config[E]) *View[E] {
	if cfg.Source == nil || cfg.ID == nil {
		panic("listview: Source and ID are required")
	}
	if cfg.FetchFallback == "" {
		cfg.FetchFallback = fmt.Sprintf("Error fetching %s. Please try again.", cfg.Name)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &View[E]{
		cfg:      cfg,
		log:      log.With(zap.String("screen", cfg.Name)),
		win:      NewWindow(cfg.PageSize),
		inflight: map[string]struct{}{},
	}
}

func (v *View[E]) Name() string { return v.cfg.Name }
func (v *View[E]) Policy() Policy { return v.cfg.Policy }
func (v *View[E]) Statuses() []string { return slices.Clone(v.cfg.Statuses) }

// FetchFallback 拉取失败且没有后端 message 时的提示
func (v *View[E]) FetchFallback() string { return v.cfg.FetchFallback }

// Load 拉取完整集合并整体替换。失败时设置持久错误标记，不会渲染旧表格或空表格。
func (v *View[E]) Load(ctx context.Context) error {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.pending++
	v.mu.Unlock()

	items, err := v.cfg.Source.ListAll(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending--
	if seq <= v.applied {
		v.log.Debug("discard stale fetch", zap.Uint64("seq", seq), zap.Uint64("applied", v.applied))
		return nil
	}
	v.applied = seq
	if err != nil {
		v.err = err
		v.log.Warn("fetch failed", zap.Error(err))
		return err
	}
	for i := range items {
		items[i] = v.normalize(items[i])
	}
	v.items = items
	v.err = nil
	v.loaded = true
	v.win = v.win.Clamp(TotalPages(len(v.filtered()), v.win.Size))
	return nil
}

// Reset 卸载页面：丢弃集合、筛选条件和仍在路上的拉取
func (v *View[E]) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = nil
	v.loaded = false
	v.err = nil
	v.query = Query{}
	v.win = NewWindow(v.cfg.PageSize)
	v.seq++
	v.applied = v.seq
}

func (v *View[E]) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Err 最近一次拉取的错误（成功拉取后清空）
func (v *View[E]) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// SetSearch 搜索词变化时回到第 1 页
func (v *View[E]) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if term == v.query.Search {
		return
	}
	v.query.Search = term
	v.win.Page = 1
}

// SetStatusFilter 状态筛选变化时回到第 1 页；"all" 或空串表示不筛选
func (v *View[E]) SetStatusFilter(status string) error {
	if status != "" && status != AllStatuses {
		if v.cfg.Status == nil {
			return domain.ErrUnsupported
		}
		if len(v.cfg.Statuses) > 0 && !slices.Contains(v.cfg.Statuses, status) {
			return domain.Invalid("status", "unknown status %q", status)
		}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if status == v.query.Status {
		return nil
	}
	v.query.Status = status
	v.win.Page = 1
	return nil
}

// SetPageSize 无条件回到第 1 页
func (v *View[E]) SetPageSize(size int) error {
	if size <= 0 {
		return domain.Invalid("size", "page size must be positive")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.win = v.win.Resize(size)
	return nil
}

// GoTo 越界是 no-op，返回是否发生跳转
func (v *View[E]) GoTo(page int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.win.GoTo(page, TotalPages(len(v.filtered()), v.win.Size))
	moved := next != v.win
	v.win = next
	return moved
}

func (v *View[E]) Next() bool {
	v.mu.Lock()
	p := v.win.Page
	v.mu.Unlock()
	return v.GoTo(p + 1)
}

func (v *View[E]) Prev() bool {
	v.mu.Lock()
	p := v.win.Page
	v.mu.Unlock()
	return v.GoTo(p - 1)
}

func (v *View[E]) Window() Window {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.win
}

// Filtered 当前筛选结果（不分页）
func (v *View[E]) Filtered() []E {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filtered()
}

// Find 从本地集合按 ID 取记录（详情弹窗）
func (v *View[E]) Find(id string) (E, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i := v.indexOf(id); i >= 0 {
		return v.items[i], true
	}
	var zero E
	return zero, false
}

// Snapshot 一次性读出渲染所需的全部状态
type Snapshot[E any] struct {
	Items      []E      `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
	Filtered   int      `json:"filtered"`
	Total      int      `json:"total"`
	Query      Query    `json:"query"`
	Loading    bool     `json:"loading"`
	Loaded     bool     `json:"loaded"`
	Error      string   `json:"error,omitempty"`
	Submitting []string `json:"submitting"`
}

func (v *View[E]) Snapshot() Snapshot[E] {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot[E]{
		Page:       v.win.Page,
		PageSize:   v.win.Size,
		TotalPages: 1,
		Total:      len(v.items),
		Query:      v.query,
		Loading:    v.pending > 0,
		Loaded:     v.loaded,
		Submitting: make([]string, 0, len(v.inflight)),
	}
	for id := range v.inflight {
		s.Submitting = append(s.Submitting, id)
	}
	sort.Strings(s.Submitting)

	if v.err != nil {
		s.Error = domain.Message(v.err, v.cfg.FetchFallback)
		s.Items = []E{}
		return s
	}
	filtered := v.filtered()
	s.Filtered = len(filtered)
	s.TotalPages = TotalPages(len(filtered), v.win.Size)
	s.Items = Slice(filtered, v.win.Page, v.win.Size)
	return s
}

func (v *View[E]) filtered() []E {
	return Filter(v.items, v.query, v.cfg.Search, v.cfg.Status)
}

func (v *View[E]) indexOf(id string) int {
	for i := range v.items {
		if v.cfg.ID(v.items[i]) == id {
			return i
		}
	}
	return -1
}

func (v *View[E]) normalize(e E) E {
	if v.cfg.Normalize == nil {
		return e
	}
	return v.cfg.Normalize(e)
}
