package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "affiliate-admin/internal/transport/http/response"
)

// ConcurrencyLimit 同时在途的请求数上限，排队直到请求 ctx 结束
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			abort(c, resp.CodeTooManyRequests, "console busy, retry later")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
