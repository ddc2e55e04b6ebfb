package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"affiliate-admin/internal/domain"
)

// Route 一个后端接口；Path 里的 ":id" 会被替换成转义后的记录 ID
type Route struct {
	Name   string
	Method string
	Path   string
	Key    string // 响应里承载数据的字段，如 "user"、"withdrawalRequests"
	Auth   bool   // 是否需要 Bearer token
}

func (r Route) Defined() bool { return r.Path != "" }

func (r Route) resolve(id string) string {
	return strings.ReplaceAll(r.Path, ":id", url.PathEscape(id))
}

// StatusRoute 状态变更的接口形状因页面而异：PATCH {status}、approve/reject 路径、POST 处理接口
type StatusRoute func(id string, ch domain.StatusChange) (Route, any)

type Endpoints struct {
	List   Route
	Get    Route
	Update Route
	Delete Route
	Status StatusRoute
}

// TokenSource 由 session.Session 实现
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

// NoTokenMessage 本地没有 token 时的提示
const NoTokenMessage = "No admin token found. Please log in."

// Collection 某一类实体的远端集合
type Collection[E any] struct {
	client *Client
	ep     Endpoints
	tokens TokenSource
}

func NewCollection[E any](client *Client, ep Endpoints, tokens TokenSource) *Collection[E] {
	return &Collection[E]{client: client, ep: ep, tokens: tokens}
}

func (c *Collection[E]) Endpoints() Endpoints { return c.ep }

func (c *Collection[E]) call(ctx context.Context, r Route, id string, body any) (*Envelope, error) {
	return Send(ctx, c.client, c.tokens, r, id, body)
}

// Send 调用单个路由。需要鉴权的路由在没有 token 时直接拒绝，不发请求；
// 后端返回 401 时清掉该 token。
func Send(ctx context.Context, client *Client, tokens TokenSource, r Route, id string, body any) (*Envelope, error) {
	if !r.Defined() {
		return nil, domain.ErrUnsupported
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	call := Call{Route: r.Name, Method: method, Path: r.resolve(id), Body: body}

	if r.Auth {
		if tokens == nil {
			return nil, &domain.RejectedError{Status: http.StatusUnauthorized, Message: NoTokenMessage}
		}
		tok, err := tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if tok == "" {
			return nil, &domain.RejectedError{Status: http.StatusUnauthorized, Message: NoTokenMessage}
		}
		call.Token = tok
	}

	env, err := client.Do(ctx, call)
	if err != nil && r.Auth && errors.Is(err, domain.ErrUnauthorized) {
		// token 过期：清掉本地存储，交给上层跳转登录
		if cerr := tokens.ClearToken(ctx); cerr != nil {
			client.log.Warn("clear token after 401 failed", zap.String("route", r.Name), zap.Error(cerr))
		}
	}
	return env, err
}

func (c *Collection[E]) ListAll(ctx context.Context) ([]E, error) {
	env, err := c.call(ctx, c.ep.List, "", nil)
	if err != nil {
		return nil, err
	}
	items := []E{}
	if !env.Has(c.ep.List.Key) {
		return items, nil
	}
	if err := env.Decode(c.ep.List.Key, &items); err != nil {
		return nil, &domain.RejectedError{Status: http.StatusOK, Err: err}
	}
	return items, nil
}

func (c *Collection[E]) GetByID(ctx context.Context, id string) (E, error) {
	var e E
	env, err := c.call(ctx, c.ep.Get, id, nil)
	if err != nil {
		return e, err
	}
	if !env.Has(c.ep.Get.Key) {
		return e, fmt.Errorf("%s %s: %w", c.ep.Get.Name, id, domain.ErrNotFound)
	}
	if err := env.Decode(c.ep.Get.Key, &e); err != nil {
		return e, &domain.RejectedError{Status: http.StatusOK, Err: err}
	}
	return e, nil
}

// Update 后端可能返回更新后的记录，也可能只回 success；后者返回 nil
func (c *Collection[E]) Update(ctx context.Context, id string, fields map[string]any) (*E, error) {
	env, err := c.call(ctx, c.ep.Update, id, fields)
	if err != nil {
		return nil, err
	}
	return c.record(env, c.ep.Update.Key)
}

func (c *Collection[E]) Remove(ctx context.Context, id string) error {
	_, err := c.call(ctx, c.ep.Delete, id, nil)
	return err
}

func (c *Collection[E]) SetStatus(ctx context.Context, id string, ch domain.StatusChange) (*E, error) {
	if c.ep.Status == nil {
		return nil, domain.ErrUnsupported
	}
	r, body := c.ep.Status(id, ch)
	env, err := c.call(ctx, r, id, body)
	if err != nil {
		return nil, err
	}
	return c.record(env, r.Key)
}

func (c *Collection[E]) record(env *Envelope, key string) (*E, error) {
	if key == "" || !env.Has(key) {
		return nil, nil
	}
	var e E
	if err := env.Decode(key, &e); err != nil {
		return nil, &domain.RejectedError{Status: http.StatusOK, Err: err}
	}
	return &e, nil
}
