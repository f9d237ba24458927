package apperr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind 错误分类
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindQueryTooBroad
	KindFilterTooComplex
	KindBackend
	KindNotFound
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindQueryTooBroad:
		return "query_too_broad"
	case KindFilterTooComplex:
		return "filter_too_complex"
	case KindBackend:
		return "backend"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error 统一的业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error // 内部原因，仅写日志或返回给可信调用方
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation 过滤器形状或取值非法
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// TooBroad 未通过查询强度门槛
func TooBroad(format string, args ...any) *Error {
	return &Error{Kind: KindQueryTooBroad, Message: fmt.Sprintf(format, args...)}
}

// TooComplex 单个过滤器所需参数位超过后端上限
func TooComplex(format string, args ...any) *Error {
	return &Error{Kind: KindFilterTooComplex, Message: fmt.Sprintf(format, args...)}
}

// NotFound 资源不存在
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Backend 存储层失败，附带调用栈
func Backend(op string, err error) *Error {
	return &Error{Kind: KindBackend, Message: op, Err: pkgerrors.WithStack(err)}
}

// Upstream 第三方接口失败
func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: op, Err: pkgerrors.WithStack(err)}
}

// KindOf 取错误分类，非 *Error 视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsClient 是否为调用方可修正的错误
func IsClient(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindQueryTooBroad, KindFilterTooComplex, KindNotFound:
		return true
	}
	return false
}

// HTTPStatus 错误分类到 HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindQueryTooBroad, KindFilterTooComplex:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message 面向调用方的文案；非客户端错误统一返回通用文案
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && IsClient(err) {
		return e.Message
	}
	return "An internal server error occurred."
}

// Stack 带调用栈的完整错误描述（仅可信调用方可见）
func Stack(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		// pkg/errors 的栈信息只在 %+v 下输出，需直接格式化内部错误
		return fmt.Sprintf("%s: %+v", e.Message, e.Err)
	}
	return fmt.Sprintf("%+v", err)
}
