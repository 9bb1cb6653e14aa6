package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	EmailCodePrefix     = "email:code"
)

// 验证码 scope：注册、重置密码、邮箱认证
const (
	CodeScopeRegister = "register"
	CodeScopeReset    = "reset"
	CodeScopeVerify   = "verify"
)

var (
	ErrCodeNotFound  = errors.New("email code not found")
	ErrCodeSetFailed = errors.New("email code set failed")
	ErrCodeDelFailed = errors.New("email code delete failed")
)

type CodeRepository struct{}

func codeKey(scope, email string) string {
	return fmt.Sprintf("%s:%s:%s", EmailCodePrefix, scope, email)
}

func (r *CodeRepository) SetCode(scope, email, code string) error {
	if err := Client.Set(context.Background(), codeKey(scope, email), code, DefaultEmailCodeTTL).Err(); err != nil {
		return ErrCodeSetFailed
	}
	return nil
}

// GetCode redis.Nil 表示不存在或已过期
func (r *CodeRepository) GetCode(scope, email string) (string, error) {
	val, err := Client.Get(context.Background(), codeKey(scope, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// DeleteCode 校验通过后一次性删除，验证码不可重放
func (r *CodeRepository) DeleteCode(scope, email string) error {
	if err := Client.Del(context.Background(), codeKey(scope, email)).Err(); err != nil {
		return ErrCodeDelFailed
	}
	return nil
}
