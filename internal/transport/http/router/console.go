package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"affiliate-admin/internal/core/server"
	"affiliate-admin/internal/session"
	"affiliate-admin/internal/transport/http/ez"
	mdw "affiliate-admin/internal/transport/http/middleware"
)

// Prefix 控制台接口前缀
const Prefix = "/console/v1"

type Options struct {
	Mode           string
	CORSOrigins    []string
	RequestTimeout time.Duration // 需覆盖后端调用超时
}

func NewConsoleEngine(l *zap.Logger, reg *Registry, admin *session.Session, o Options) *gin.Engine {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	r := server.NewRouter(l, server.Options{Mode: o.Mode, CORSOrigins: o.CORSOrigins})

	// 日志和指标在最外层，限流 / 超时 / panic 的结果也能记到
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l.Named("access"), Prefix),
		mdw.Metrics(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(o.RequestTimeout),
		mdw.SimpleRecovery(l),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ez.LoginPath = Prefix + "/login"
	v1 := r.Group(Prefix)

	// 登录 / 验证码按 IP 限速
	public := v1.Group("")
	public.Use(mdw.RateLimitPerIP(1, 5))
	reg.MountAllPublic(public)

	// 其余页面统一要求本地已有 adminToken
	authed := v1.Group("")
	authed.Use(mdw.RequireSession(admin, ez.LoginPath))
	reg.MountAllConsole(authed)

	return r
}
