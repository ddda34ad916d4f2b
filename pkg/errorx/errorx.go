package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "用户不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNotFound, "用户 %s 不存在", userId)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// 业务状态码常量定义
const (
	CodeSuccess      = 1000 // 成功
	CodeInvalidParam = 1001 // 请求参数错误 (ValidationError)
	CodeServerBusy   = 1005 // 服务繁忙
	CodeUnauthorized = 1006 // 未授权/认证失败 (AuthenticationError)
	CodeNotFound     = 1008 // 资源不存在 (NotFoundError)
	CodeDBError      = 1010 // 数据库错误 (StoreError)
	CodeCacheError   = 1011 // 缓存错误
	CodeForbidden    = 1012 // 无权限 (ForbiddenError)
	CodeConflict     = 1013 // 重复请求 (ConflictError)
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy   = New(CodeServerBusy, "服务繁忙")
	ErrUnauthorized = New(CodeUnauthorized, "认证失败")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound）
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}

// Kind 返回错误所属的分类名称
func Kind(err error) string {
	switch GetCode(err) {
	case CodeInvalidParam:
		return "ValidationError"
	case CodeNotFound:
		return "NotFoundError"
	case CodeForbidden:
		return "ForbiddenError"
	case CodeConflict:
		return "ConflictError"
	case CodeUnauthorized:
		return "AuthenticationError"
	default:
		return "StoreError"
	}
}

// IsFault 判断错误是否属于需要记录日志的系统故障
// 参数错误、权限错误等由调用方造成的错误不算故障
func IsFault(err error) bool {
	switch GetCode(err) {
	case CodeInvalidParam, CodeNotFound, CodeForbidden, CodeConflict, CodeUnauthorized:
		return false
	}
	return true
}

// Public 返回可以展示给调用方的错误消息
// 存储层故障统一返回 "服务繁忙"，不暴露底层细节
func Public(err error) string {
	var codeErr *CodeError
	if !errors.As(err, &codeErr) || IsFault(err) {
		return ErrServerBusy.Msg
	}
	return codeErr.Msg
}

// HTTPStatus 将错误码映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
