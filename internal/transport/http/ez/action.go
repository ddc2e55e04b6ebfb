package ez

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"affiliate-admin/internal/domain"
	resp "affiliate-admin/internal/transport/http/response"
)

// LoginPath 401 时前端应跳转的地址
var LoginPath = "/console/v1/login"

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.Query 取
)

// 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Data any
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

// FromError 把领域错误映射成对外的 code/msg；后端 message 原样透出，
// 没有 message 时用 fallback。
func FromError(err error, fallback string) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &AErr{Code: resp.CodeBadRequest, Msg: ve.Message, Err: err}
	}
	var re *domain.RejectedError
	if errors.As(err, &re) {
		out := &AErr{Code: re.Status, Msg: domain.Message(err, fallback), Err: err}
		switch {
		case re.Status == http.StatusUnauthorized:
			out.Data = gin.H{"redirect": LoginPath}
		case re.Status < 400:
			// 2xx + success=false 或响应体无法解析
			out.Code = resp.CodeBadGateway
		}
		return out
	}
	var ne *domain.NetworkError
	if errors.As(err, &ne) {
		return &AErr{Code: resp.CodeBadGateway, Msg: fallback, Err: err}
	}
	switch {
	case errors.Is(err, domain.ErrBusy):
		return &AErr{Code: resp.CodeConflict, Msg: domain.ErrBusy.Error(), Err: err}
	case errors.Is(err, domain.ErrNotFound):
		return &AErr{Code: resp.CodeNotFound, Msg: "record not found", Err: err}
	case errors.Is(err, domain.ErrUnsupported):
		return &AErr{Code: resp.CodeMethodNotAllowed, Msg: domain.ErrUnsupported.Error(), Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &AErr{Code: resp.CodeGatewayTimeout, Msg: "timeout", Err: err}
	}
	return &AErr{Code: resp.CodeServerError, Msg: fallback, Err: err}
}

// Fail 写失败响应（HTTP 状态恒为 200，错误码在 body 里）
func Fail(c *gin.Context, err error, fallback string) {
	ae := FromError(err, fallback)
	if ae.Code >= resp.CodeServerError {
		_ = c.Error(err)
	}
	c.Set(resp.CtxCode, ae.Code)
	c.JSON(http.StatusOK, resp.ErrorWith(ae.Code, ae.Error(), ae.Data))
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method   string // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path     string // 例："/login"、"/users/:id/status"
	Binder   Binder
	Fallback string // 后端没有 message 时给用户看的文案
	Handler  func(c *gin.Context, in *I) (O, error)
}

// 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	fallback := a.Fallback
	if fallback == "" {
		fallback = "Something went wrong. Please try again."
	}
	h := func(c *gin.Context) {
		// 1) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			c.Set(resp.CtxCode, resp.CodeBadRequest)
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		// 2) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, err, fallback)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
