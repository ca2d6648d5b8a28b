package util

import "errors"

var (
	// 调用方违反引擎前置条件，例如未作答就前进
	ErrPreconditionFailed = errors.New("precondition failed")
	// 当前状态下不允许该状态迁移
	ErrInvalidState = errors.New("invalid state")
	// AI 补全服务调用失败
	ErrExternalService = errors.New("external service error")

	ErrQuizNotFound       = errors.New("quiz not found")
	ErrContentNotFound    = errors.New("offline content not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidFile        = errors.New("invalid file")
	ErrInvalidParam       = errors.New("invalid parameter")
)
