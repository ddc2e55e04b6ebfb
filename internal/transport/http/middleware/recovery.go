package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "affiliate-admin/internal/transport/http/response"
)

// SimpleRecovery 记录 panic 与路由模板，返回 500 信封
func SimpleRecovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.String("rid", c.GetString(KeyRequestID)),
					zap.String("path", c.Request.URL.Path),
					zap.String("route", c.FullPath()),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				abort(c, resp.CodeServerError, "internal error")
			}
		}()
		c.Next()
	}
}
