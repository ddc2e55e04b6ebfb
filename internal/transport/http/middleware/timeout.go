package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "affiliate-admin/internal/transport/http/response"
)

// Timeout 给整条请求（含后端调用）一个总期限；handler 未写响应时补 504
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if c.Writer.Written() || c.IsAborted() {
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			abort(c, resp.CodeGatewayTimeout, "timeout")
		}
	}
}
