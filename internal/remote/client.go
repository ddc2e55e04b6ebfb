// Package remote 把列表页的增删改查翻译成对后端 REST 接口的 HTTP 调用。
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"affiliate-admin/internal/domain"
)

const (
	DefaultTimeout = 20 * time.Second
	maxBodyBytes   = 8 << 20
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration // 每次调用的客户端超时，到期按 NetworkError 处理
	RPS        float64       // 0 表示不限速
	Burst      int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	base    *url.URL
	hc      *http.Client
	timeout time.Duration
	lim     *rate.Limiter
	log     *zap.Logger
	sf      singleflight.Group
	// 写操作开始和结束时各加一，合并 GET 的 key 带上它
	gen atomic.Uint64
}

func New(o Options) (*Client, error) {
	base, err := url.Parse(o.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", o.BaseURL)
	}
	c := &Client{
		base:    base,
		hc:      o.HTTPClient,
		timeout: o.Timeout,
		log:     o.Logger,
	}
	if c.hc == nil {
		c.hc = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if o.RPS > 0 {
		c.lim = rate.NewLimiter(rate.Limit(o.RPS), max(1, o.Burst))
	}
	return c, nil
}

// HeaderRequestID 入站请求的 ID 原样转发给后端
const HeaderRequestID = "X-Request-ID"

type ridKey struct{}

// WithRequestID 把入站请求 ID 放进 ctx，之后的后端调用都带上它
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ridKey{}, rid)
}

func requestID(ctx context.Context) string {
	if rid, ok := ctx.Value(ridKey{}).(string); ok && rid != "" {
		return rid
	}
	return uuid.NewString()
}

// Call 一次后端调用；Token 由调用方（Collection）决定是否带上
type Call struct {
	Route  string // 指标和日志用的路由名，如 "user.list"
	Method string
	Path   string // 相对 BaseURL，已转义
	Token  string
	Body   any
}

// Do 发请求并解析响应信封。
// 同一路径 + token 的并发 GET 合并成一次，但不会跨越写操作：写操作期间或之后发起的 GET
// 不会拿到写之前开始的那次结果。合并后的请求不受单个调用方取消的影响，各调用方按自己的 ctx 返回。
func (c *Client) Do(ctx context.Context, call Call) (*Envelope, error) {
	if call.Method == "" {
		call.Method = http.MethodGet
	}
	if call.Method != http.MethodGet || call.Body != nil {
		c.gen.Add(1)
		defer c.gen.Add(1)
		return c.do(ctx, call)
	}
	key := strconv.FormatUint(c.gen.Load(), 10) + " " + call.Token + " " + call.Path
	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key, func() (any, error) {
		return c.do(shared, call)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Envelope), nil
	case <-ctx.Done():
		return nil, &domain.NetworkError{Op: call.Route, Err: ctx.Err()}
	}
}

func (c *Client) do(ctx context.Context, call Call) (*Envelope, error) {
	start := time.Now()
	env, status, err := c.send(ctx, call)
	latency := time.Since(start)

	backendReqTotal.WithLabelValues(call.Route, call.Method, outcome(err)).Inc()
	backendLatency.WithLabelValues(call.Route, call.Method).Observe(latency.Seconds())

	fields := []zap.Field{
		zap.String("route", call.Route),
		zap.String("method", call.Method),
		zap.String("path", call.Path),
		zap.Int("status", status),
		zap.Duration("latency", latency),
	}
	if err != nil {
		c.log.Warn("backend call failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	c.log.Debug("backend call", fields...)
	return env, nil
}

func (c *Client) send(ctx context.Context, call Call) (*Envelope, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.lim != nil {
		if err := c.lim.Wait(ctx); err != nil {
			return nil, 0, &domain.NetworkError{Op: call.Route, Err: err}
		}
	}

	var body io.Reader
	if call.Body != nil {
		b, err := json.Marshal(call.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode %s body: %w", call.Route, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.base.JoinPath(call.Path)
	req, err := http.NewRequestWithContext(ctx, call.Method, u.String(), body)
	if err != nil {
		return nil, 0, &domain.NetworkError{Op: call.Route, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderRequestID, requestID(ctx))
	if call.Token != "" {
		req.Header.Set("Authorization", "Bearer "+call.Token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, &domain.NetworkError{Op: call.Route, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, &domain.NetworkError{Op: call.Route, Err: err}
	}
	env, perr := parseEnvelope(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		re := &domain.RejectedError{Status: resp.StatusCode}
		if perr == nil {
			re.Message = env.Message
		}
		return nil, resp.StatusCode, re
	}
	if perr != nil {
		return nil, resp.StatusCode, &domain.RejectedError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("malformed response: %w", perr),
		}
	}
	if !env.OK() {
		return nil, resp.StatusCode, &domain.RejectedError{Status: resp.StatusCode, Message: env.Message}
	}
	return env, resp.StatusCode, nil
}
