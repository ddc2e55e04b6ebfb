package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// PublicModule 登录前可访问；ConsoleModule 挂在会话校验之后。模块可实现其中一个或两个。
type PublicModule interface{ MountPublic(*gin.RouterGroup) }
type ConsoleModule interface{ MountConsole(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

type Registry struct {
	mu         sync.RWMutex
	publicMods []PublicModule
	consoleMod []ConsoleModule
}

func NewRegistry() *Registry { return &Registry{} }

// Register 统一注册入口：根据类型断言分发
func (r *Registry) Register(mods ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mod := range mods {
		if m, ok := mod.(PublicModule); ok {
			r.publicMods = append(r.publicMods, m)
		}
		if m, ok := mod.(ConsoleModule); ok {
			r.consoleMod = append(r.consoleMod, m)
		}
	}
}

func (r *Registry) MountAllPublic(g *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]PublicModule(nil), r.publicMods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountPublic(g)
	}
}

func (r *Registry) MountAllConsole(g *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]ConsoleModule(nil), r.consoleMod...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountConsole(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
