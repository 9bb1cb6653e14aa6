package service

import (
	"context"
	"time"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"
	"instasphere/internal/repository/redis"
)

type VerificationService struct {
	repo     *mysql.VerificationRepository
	emailSvc *EmailService
	pub      *changefeed.Publisher
}

func NewVerificationService(emailSvc *EmailService, pub *changefeed.Publisher) *VerificationService {
	return &VerificationService{
		repo:     &mysql.VerificationRepository{},
		emailSvc: emailSvc,
		pub:      pub,
	}
}

func (s *VerificationService) Status(ctx context.Context, userID string) (*model.UserVerification, error) {
	v, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, mysql.WrapLoadErr(err)
	}
	return v, nil
}

// RequestEmailCode 给本人邮箱发认证码
func (s *VerificationService) RequestEmailCode(email string) error {
	return s.emailSvc.SendCode(redis.CodeScopeVerify, email)
}

// VerifyEmail 验证码通过即升级为 email_verified
func (s *VerificationService) VerifyEmail(ctx context.Context, user *model.User, code string) error {
	if _, err := s.emailSvc.VerifyCode(redis.CodeScopeVerify, user.Email, code); err != nil {
		return err
	}
	return s.upgrade(ctx, user.ID, model.VerifyLevelEmail, user.ID)
}

// AdminVerify 管理员手工认证任意用户到指定等级
func (s *VerificationService) AdminVerify(ctx context.Context, operator *model.User, targetID, level string) error {
	if operator.Role < 1 {
		return pkg.Authorizationf("only admins can verify other users")
	}
	switch level {
	case model.VerifyLevelEmail, model.VerifyLevelPhone, model.VerifyLevelIdentity:
	default:
		return pkg.Validationf("unknown verification level %q", level)
	}
	return s.upgrade(ctx, targetID, level, operator.ID)
}

func (s *VerificationService) upgrade(ctx context.Context, userID, level, verifiedBy string) error {
	v := &model.UserVerification{
		UserID:            userID,
		IsVerified:        true,
		VerificationLevel: level,
		VerifiedBy:        verifiedBy,
		VerifiedAt:        time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, v); err != nil {
		return pkg.Writef("%v", err)
	}
	s.pub.Publish(ctx, changefeed.TableVerification, changefeed.OpUpdate, v, nil)
	return nil
}
