package mysql

import (
	"context"

	"instasphere/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct{}

// ListPending 按批量取待投递事件
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]model.NotificationOutbox, error) {
	var rows []model.NotificationOutbox
	err := DB.WithContext(ctx).
		Where("status = 0").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return DB.WithContext(ctx).Model(&model.NotificationOutbox{}).
		Where("id = ?", id).
		Update("status", 1).Error
}

// MarkRetry 重试计数+1，超过上限置为 failed
func (r *OutboxRepository) MarkRetry(ctx context.Context, id uint64, maxRetry int) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.NotificationOutbox{}).
			Where("id = ?", id).
			UpdateColumn("retry", gorm.Expr("retry + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.NotificationOutbox{}).
			Where("id = ? AND retry >= ?", id, maxRetry).
			Update("status", 2).Error
	})
}
