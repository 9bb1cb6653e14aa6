package mysql

import (
	"context"

	"instasphere/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct{}

func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	return DB.WithContext(ctx).Create(m).Error
}

// ListByChannel 取最近 limit 条，返回按时间升序（先查倒序再反转）
func (r *MessageRepository) ListByChannel(ctx context.Context, channelID string, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var list []model.Message
	err := DB.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	err := DB.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

// DeleteWithPermission 作者或管理员可删。affected==0 表示不存在或无权限
func (r *MessageRepository) DeleteWithPermission(ctx context.Context, messageID, operatorID string) (int64, error) {
	res := DB.WithContext(ctx).Exec(`
		DELETE m FROM messages m
		WHERE m.id = ?
		  AND (m.user_id = ? OR EXISTS (
		       SELECT 1 FROM users u WHERE u.id = ? AND u.role >= 1
		  ))`,
		messageID, operatorID, operatorID,
	)
	return res.RowsAffected, res.Error
}

func (r *MessageRepository) IncrementLikes(ctx context.Context, messageID string) (*model.Message, error) {
	if err := DB.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", messageID).
		UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, messageID)
}
