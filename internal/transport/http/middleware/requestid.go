package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"affiliate-admin/internal/remote"
)

const KeyRequestID = remote.HeaderRequestID

// RequestID 生成或沿用请求 ID，并写进 request context 供后端调用转发
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(KeyRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Request = c.Request.WithContext(remote.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
