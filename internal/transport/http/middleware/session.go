package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/session"
	resp "affiliate-admin/internal/transport/http/response"
)

// RequireSession 本地没有管理员 token 时直接 401，并告诉前端跳转登录页
func RequireSession(s *session.Session, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Present(c.Request.Context()) {
			c.Set(resp.CtxCode, resp.CodeUnauthorized)
			c.AbortWithStatusJSON(http.StatusOK, resp.ErrorWith(resp.CodeUnauthorized, remote.NoTokenMessage, gin.H{"redirect": loginPath}))
			return
		}
		c.Next()
	}
}

// abort 以信封形式结束请求（HTTP 200），并记下 code 供访问日志使用
func abort(c *gin.Context, code int, msg string) {
	c.Set(resp.CtxCode, code)
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(code, msg))
}
