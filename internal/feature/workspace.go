package feature

import "sync"

// Workspace 一个浏览器标签页里的全部页面
type Workspace struct {
	mu   sync.RWMutex
	mods []Module
}

func NewWorkspace(mods ...Module) *Workspace {
	return &Workspace{mods: mods}
}

func (w *Workspace) Add(m Module) {
	w.mu.Lock()
	w.mods = append(w.mods, m)
	w.mu.Unlock()
}

func (w *Workspace) Modules() []Module {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Module(nil), w.mods...)
}

func (w *Workspace) Get(name string) (Module, bool) {
	for _, m := range w.Modules() {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// Dashboard 各页面的记录数（未挂载的页面 Loaded=false）
func (w *Workspace) Dashboard() []Summary {
	mods := w.Modules()
	out := make([]Summary, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.Summary())
	}
	return out
}

// UnmountAll 退出登录或进程退出时调用
func (w *Workspace) UnmountAll() {
	for _, m := range w.Modules() {
		m.Unmount()
	}
}
