package mysql

import (
	"context"
	"time"

	"instasphere/internal/model"
)

type DirectMessageRepository struct{}

func (r *DirectMessageRepository) Create(ctx context.Context, m *model.DirectMessage) error {
	return DB.WithContext(ctx).Create(m).Error
}

// ListConversation 双向取会话消息，软删行不进首屏快照
func (r *DirectMessageRepository) ListConversation(ctx context.Context, userA, userB string, limit int) ([]model.DirectMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var list []model.DirectMessage
	err := DB.WithContext(ctx).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND is_deleted = 0",
			userA, userB, userB, userA).
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

func (r *DirectMessageRepository) FindByID(ctx context.Context, id string) (*model.DirectMessage, error) {
	var m model.DirectMessage
	err := DB.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

// SoftDelete 仅发送者可删；内容替换占位符。幂等：已删行 affected==0
func (r *DirectMessageRepository) SoftDelete(ctx context.Context, messageID, senderID string) (int64, error) {
	now := time.Now().UTC()
	res := DB.WithContext(ctx).Model(&model.DirectMessage{}).
		Where("id = ? AND sender_id = ? AND is_deleted = 0", messageID, senderID).
		Updates(map[string]any{
			"content":    "[Message deleted]",
			"is_deleted": true,
			"deleted_at": now,
		})
	return res.RowsAffected, res.Error
}
