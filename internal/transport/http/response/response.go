package response

import "net/http"

// CtxCode gin.Context 里记录本次响应信封 code 的键（访问日志用）
const CtxCode = "resp.code"

type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data any) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if msg == "" {
		msg = http.StatusText(code)
	}
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// ErrorWith 带 data 的失败响应（如 401 时附带跳转地址）
func ErrorWith(code int, customMsg string, data any) Resp {
	r := Error(code, customMsg)
	if data != nil {
		r.Data = data
	}
	return r
}
