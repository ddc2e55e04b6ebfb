package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrBusy 同一条记录已有提交中的操作
	ErrBusy = errors.New("action already in progress for this record")
	// ErrUnsupported 当前页面不支持该操作
	ErrUnsupported = errors.New("operation not supported")
	// ErrUnauthorized 后端返回 401，本地 token 已清除
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound 本地集合中不存在该记录
	ErrNotFound = errors.New("record not found")
	// ErrNotConfirmed 删除前未确认
	ErrNotConfirmed = &ValidationError{Field: "confirm", Message: "deletion must be confirmed"}
)

// NetworkError 请求未到达后端或没有响应（含客户端超时）
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return "network error: " + e.Op
	}
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectedError 后端有响应，但状态码非 2xx 或 success=false
type RejectedError struct {
	Status  int
	Message string
	Err     error
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("rejected (%d): %s", e.Status, msg)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, ErrUnauthorized) 命中 401
func (e *RejectedError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// ValidationError 客户端校验失败，不会发出任何请求
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Message 返回给用户看的文案：后端 message 原样透出，否则用 fallback
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var re *RejectedError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, ErrBusy) {
		return ErrBusy.Error()
	}
	return fallback
}
