package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "affiliate-admin/internal/transport/http/response"
)

// RateLimit 全局令牌桶
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if !lim.Allow() {
			throttled(c, rps)
			return
		}
		c.Next()
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// 超过该时长未出现的 IP 会被清理
const ipIdle = 10 * time.Minute

// RateLimitPerIP 登录/OTP 等公开接口按来源 IP 限速
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		buckets = make(map[string]*ipBucket)
		swept   time.Time
	)
	return func(c *gin.Context) {
		now := time.Now()
		mu.Lock()
		if now.Sub(swept) > ipIdle {
			for ip, b := range buckets {
				if now.Sub(b.seen) > ipIdle {
					delete(buckets, ip)
				}
			}
			swept = now
		}
		b, ok := buckets[c.ClientIP()]
		if !ok {
			b = &ipBucket{lim: rate.NewLimiter(rps, burst)}
			buckets[c.ClientIP()] = b
		}
		b.seen = now
		allowed := b.lim.AllowN(now, 1)
		mu.Unlock()
		if !allowed {
			throttled(c, rps)
			return
		}
		c.Next()
	}
}

func throttled(c *gin.Context, rps rate.Limit) {
	if rps > 0 {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/float64(rps)))))
	}
	abort(c, resp.CodeTooManyRequests, "too many requests")
}
