package service

import (
	"errors"
	"fmt"
)

// FailureKind 业务失败类型，供接口层映射HTTP状态
type FailureKind string

const (
	FailureValidation        FailureKind = "VALIDATION_FAILED"
	FailureReferenceNotFound FailureKind = "REFERENCE_NOT_FOUND"
	FailureDuplicate         FailureKind = "DUPLICATE"
	FailureResolution        FailureKind = "RESOLUTION_FAILED"
	FailureCycleDetected     FailureKind = "CYCLE_DETECTED"
	FailureConflict          FailureKind = "CONFLICT"
	FailureDependency        FailureKind = "DEPENDENCY_FAILED"
)

// BusinessError 业务错误
type BusinessError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func newBizError(kind FailureKind, format string, args ...interface{}) *BusinessError {
	return &BusinessError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapBizError(kind FailureKind, err error, format string, args ...interface{}) *BusinessError {
	return &BusinessError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf 提取业务失败类型；非业务错误返回空串
func KindOf(err error) FailureKind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
