package service

import (
	"errors"

	"instasphere/internal/pkg"
	"instasphere/internal/repository/redis"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redis.CodeRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redis.CodeRepository{}}
}

var codeSubjects = map[string]string{
	redis.CodeScopeRegister: "Sign-up verification",
	redis.CodeScopeReset:    "Password reset",
	redis.CodeScopeVerify:   "Email verification",
}

// SendCode 生成验证码写入 redis 再发邮件
func (s *EmailService) SendCode(scope, email string) error {
	subject, ok := codeSubjects[scope]
	if !ok {
		return pkg.Validationf("unknown code scope %q", scope)
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err := s.rds.SetCode(scope, email, code); err != nil {
		return err
	}

	html := pkg.EmailCodeHTML(subject, code, redis.DefaultEmailCodeTTL)
	if err := pkg.SendEmail(s.emailCfg, email, subject+" code", html); err != nil {
		// 邮件没发出去就把码删掉，避免占着 scope
		_ = s.rds.DeleteCode(scope, email)
		return err
	}
	return nil
}

// VerifyCode 校验并一次性删除。redis 本身不可达时原样上抛，
// 调用方据此区分网络故障和验证码错误
func (s *EmailService) VerifyCode(scope, email, code string) (bool, error) {
	val, err := s.rds.GetCode(scope, email)
	if err != nil {
		if errors.Is(err, redis.ErrCodeNotFound) {
			return false, pkg.Validationf("code expired or not found")
		}
		return false, err
	}
	if val != code {
		return false, pkg.Validationf("incorrect code")
	}
	if err := s.rds.DeleteCode(scope, email); err != nil {
		return false, err
	}
	return true, nil
}
