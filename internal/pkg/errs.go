package pkg

import (
	"errors"
	"fmt"
)

// 错误分类。各层包一层语义，handler 按类别映射状态码
var (
	ErrValidation        = errors.New("validation failed")
	ErrAuthorization     = errors.New("authorization failed")
	ErrLoad              = errors.New("load failed")
	ErrWrite             = errors.New("write failed")
	ErrSubscription      = errors.New("subscription failed")
	ErrConfiguration     = errors.New("configuration invalid")
	ErrCollectionMissing = errors.New("collection does not exist")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Authorizationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

func Loadf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLoad, fmt.Sprintf(format, args...))
}

func Writef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrWrite, fmt.Sprintf(format, args...))
}
