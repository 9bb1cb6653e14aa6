package mysql

import (
	"context"
	"errors"
	"strings"

	"instasphere/internal/model"

	"gorm.io/gorm"
)

var ErrChannelNameTaken = errors.New("channel name already exists")

type ChannelRepository struct{}

func (r *ChannelRepository) Create(ctx context.Context, ch *model.Channel) error {
	err := DB.WithContext(ctx).Create(ch).Error
	if err != nil && strings.Contains(err.Error(), "Duplicate entry") {
		return ErrChannelNameTaken
	}
	return err
}

// List 全量按创建时间升序，第一条作为默认活跃频道
func (r *ChannelRepository) List(ctx context.Context) ([]model.Channel, error) {
	var list []model.Channel
	err := DB.WithContext(ctx).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *ChannelRepository) FindByID(ctx context.Context, id string) (*model.Channel, error) {
	var ch model.Channel
	err := DB.WithContext(ctx).First(&ch, "id = ?", id).Error
	return &ch, err
}

// DeleteWithPermission 创建者或管理员可删，同一事务里级联删频道消息。
// affected==0 表示频道不存在或无权限
func (r *ChannelRepository) DeleteWithPermission(ctx context.Context, channelID, operatorID string) (affected int64, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			DELETE c FROM channels c
			WHERE c.id = ?
			  AND (c.created_by = ? OR EXISTS (
			       SELECT 1 FROM users u WHERE u.id = ? AND u.role >= 1
			  ))`,
			channelID, operatorID, operatorID,
		)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}
		return tx.Where("channel_id = ?", channelID).Delete(&model.Message{}).Error
	})
	return affected, err
}
