package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误类型
// 用于统一管理对外返回的错误，包含错误码和错误消息
type AppError struct {
	Code    int    // 错误码
	Message string // 对外的错误消息
	Err     error  // 原始错误（可选，用于调试）
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建新错误
func NewError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装原始错误
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// WithMessage 替换错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// Is 判断是否为指定错误
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// GetCode 获取错误码，如果不是 AppError 返回默认错误码
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServerError
}

// GetMessage 获取错误消息
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "服务器内部错误"
}

// ============== 错误码定义 ==============

const (
	CodeSuccess = 0

	// 参数相关 11000-11999
	CodeInvalidParams = 11002
	CodeInvalidCard   = 11003

	// 房间相关 20000-20999
	CodeRoomNotFound = 20001
	CodeRoomLimit    = 20002
	CodeInvalidName  = 20003
	CodeEmptyMessage = 20004
	CodeRoomExists   = 20005

	// 对局相关 21000-21999
	CodeNotYourTurn    = 21001
	CodeInvalidPlay    = 21002
	CodeEffectNotReady = 21003
	CodeGameState      = 21004
	CodePlayerNotFound = 21005
	CodeInvalidSetting = 21006

	// 系统错误 50000-50999
	CodeServerError = 50001
)

// ============== 预定义错误 ==============

// 参数相关
var (
	ErrInvalidParams = NewError(CodeInvalidParams, "参数校验失败")
	ErrInvalidCard   = NewError(CodeInvalidCard, "无法识别的牌")
)

// 房间相关
var (
	ErrRoomNotFound = NewError(CodeRoomNotFound, "房间不存在")
	ErrRoomLimit    = NewError(CodeRoomLimit, "房间数量已达上限")
	ErrInvalidName  = NewError(CodeInvalidName, "名字不能为空")
	ErrEmptyMessage = NewError(CodeEmptyMessage, "消息不能为空")
	ErrRoomExists   = NewError(CodeRoomExists, "房间已存在")
)

// 对局相关，消息使用引擎的错误代码
var (
	ErrNotYourTurn    = NewError(CodeNotYourTurn, "NOT_YOUR_TURN")
	ErrInvalidPlay    = NewError(CodeInvalidPlay, "INVALID_PLAY")
	ErrEffectNotReady = NewError(CodeEffectNotReady, "EFFECT_NOT_ALLOWED")
	ErrGameState      = NewError(CodeGameState, "INVALID_GAME_STATE")
	ErrPlayerNotFound = NewError(CodePlayerNotFound, "PLAYER_NOT_FOUND")
	ErrInvalidSetting = NewError(CodeInvalidSetting, "INVALID_SETTING")
)

// 系统相关
var (
	ErrServerError = NewError(CodeServerError, "服务器内部错误")
)
