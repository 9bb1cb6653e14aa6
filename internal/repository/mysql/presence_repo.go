package mysql

import (
	"context"
	"time"

	"instasphere/internal/model"

	"gorm.io/gorm/clause"
)

type PresenceRepository struct{}

// Upsert 心跳落行。JoinedAt 只在首插时生效
func (r *PresenceRepository) Upsert(ctx context.Context, p *model.UserPresence) error {
	return DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "avatar_url", "is_online", "last_seen",
		}),
	}).Create(p).Error
}

func (r *PresenceRepository) SetOffline(ctx context.Context, userID string) error {
	return DB.WithContext(ctx).Model(&model.UserPresence{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"is_online": false, "last_seen": time.Now().UTC()}).Error
}

// ListOnline 在线且最近有心跳的用户
func (r *PresenceRepository) ListOnline(ctx context.Context, within time.Duration) ([]model.UserPresence, error) {
	var list []model.UserPresence
	err := DB.WithContext(ctx).
		Where("is_online = 1 AND last_seen > ?", time.Now().UTC().Add(-within)).
		Order("last_seen DESC").
		Find(&list).Error
	return list, err
}
