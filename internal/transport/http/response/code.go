package response

// 常见业务 系统级错误码（直接基于 HTTP 语义）
const (
	CodeOK               = 0
	CodeBadRequest       = 400
	CodeUnauthorized     = 401
	CodeForbidden        = 403
	CodeNotFound         = 404
	CodeMethodNotAllowed = 405
	CodeConflict         = 409
	CodeTooManyRequests  = 429
	CodeServerError      = 500
	CodeBadGateway       = 502
	CodeGatewayTimeout   = 504
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:               "OK",
	CodeBadRequest:       "Bad Request",
	CodeUnauthorized:     "Unauthorized",
	CodeForbidden:        "Forbidden",
	CodeNotFound:         "Not Found",
	CodeMethodNotAllowed: "Method Not Allowed",
	CodeConflict:         "Conflict",
	CodeTooManyRequests:  "Too Many Requests",
	CodeServerError:      "Internal Server Error",
	CodeBadGateway:       "Bad Gateway",
	CodeGatewayTimeout:   "Gateway Timeout",
}
