package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	resp "affiliate-admin/internal/transport/http/response"
)

// 查询串里需要打码的 key（小写比较）
var sensitiveKeys = map[string]struct{}{
	"password": {}, "token": {}, "authorization": {}, "access_token": {},
	"otp": {}, "oldpassword": {}, "newpassword": {}, "confirmpassword": {},
}

func maskQuery(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
			continue
		}
		out[k] = v
	}
	return out
}

// screenOf 取路由模板里前缀后的第一段，如 /console/v1/users/:id → users
func screenOf(route, prefix string) string {
	rest := strings.TrimPrefix(strings.TrimPrefix(route, prefix), "/")
	name, _, _ := strings.Cut(rest, "/")
	return name
}

// AccessLog HTTP 状态恒为 200，真正的结果看信封 code：>=500 记 Error，>=400 记 Warn
func AccessLog(l *zap.Logger, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		code := c.GetInt(resp.CtxCode)
		lvl := zapcore.InfoLevel
		switch {
		case code >= resp.CodeServerError:
			lvl = zapcore.ErrorLevel
		case code >= resp.CodeBadRequest:
			lvl = zapcore.WarnLevel
		}
		ce := l.Check(lvl, "HTTP")
		if ce == nil {
			return
		}
		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("screen", screenOf(c.FullPath(), prefix)),
			zap.Int("status", c.Writer.Status()),
			zap.Int("code", code),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.Any("query", maskQuery(c.Request.URL.Query())),
			zap.Int("size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		ce.Write(fields...)
	}
}
