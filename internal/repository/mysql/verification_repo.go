package mysql

import (
	"context"
	"errors"
	"time"

	"instasphere/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationRepository struct{}

func (r *VerificationRepository) Upsert(ctx context.Context, v *model.UserVerification) error {
	return DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_verified", "verification_level", "verified_by", "verified_at",
		}),
	}).Create(v).Error
}

// Get 没有记录等同未认证，不视为错误
func (r *VerificationRepository) Get(ctx context.Context, userID string) (*model.UserVerification, error) {
	var v model.UserVerification
	err := DB.WithContext(ctx).First(&v, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserVerification{UserID: userID, VerificationLevel: model.VerifyLevelNone}, nil
	}
	return &v, err
}

// VerifiedPartner 私信侧栏条目：已认证且在线的用户
type VerifiedPartner struct {
	model.UserPresence
	IsVerified        bool   `json:"is_verified"`
	VerificationLevel string `json:"verification_level"`
}

// ListVerifiedOnline 认证表 join 在线表，排除自己
func (r *VerificationRepository) ListVerifiedOnline(ctx context.Context, selfID string, within time.Duration) ([]VerifiedPartner, error) {
	var list []VerifiedPartner
	err := DB.WithContext(ctx).
		Table("user_verification v").
		Select("p.*, v.is_verified, v.verification_level").
		Joins("JOIN user_presence p ON p.user_id = v.user_id").
		Where("v.user_id <> ? AND v.is_verified = 1 AND p.is_online = 1 AND p.last_seen > ?",
			selfID, time.Now().UTC().Add(-within)).
		Scan(&list).Error
	return list, err
}
