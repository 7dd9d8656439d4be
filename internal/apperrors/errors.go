// Package apperrors 定义跨层共享的错误分类
package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrExternalProcess = errors.New("synthesis process failed")
	ErrTimeout         = errors.New("synthesis timed out")
	ErrPersistence     = errors.New("persistence error")
)
