package mysql

import (
	"context"

	"instasphere/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct{}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return DB.WithContext(ctx).Create(n).Error
}

// CreateWithOutbox 通知行和外发行同事务落库，relayer 异步投递 kafka
func (r *NotificationRepository) CreateWithOutbox(ctx context.Context, n *model.Notification, ob *model.NotificationOutbox) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		return tx.Create(ob).Error
	})
}

// ListByUser 最新 limit 条，倒序
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	var list []model.Notification
	err := DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// MarkRead 只有属主能改已读位。affected==0 表示不存在或不是属主
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) (int64, error) {
	res := DB.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	return DB.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = 0", userID).
		Update("read", true).Error
}
