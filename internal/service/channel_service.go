package service

import (
	"context"
	"errors"
	"strings"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChannelService struct {
	repo *mysql.ChannelRepository
	pub  *changefeed.Publisher
}

func NewChannelService(pub *changefeed.Publisher) *ChannelService {
	return &ChannelService{repo: &mysql.ChannelRepository{}, pub: pub}
}

func (s *ChannelService) List(ctx context.Context) ([]model.Channel, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, mysql.WrapLoadErr(err)
	}
	return list, nil
}

// Create 频道名先归一化成 slug 再落库，重名直接拒绝
func (s *ChannelService) Create(ctx context.Context, operator *model.User, name, description string) (*model.Channel, error) {
	slug := pkg.SlugifyChannelName(name)
	if slug == "" {
		return nil, pkg.Validationf("channel name must contain at least one letter or digit")
	}

	ch := &model.Channel{
		ID:          uuid.NewString(),
		Name:        slug,
		Description: strings.TrimSpace(description),
		CreatedBy:   operator.ID,
	}
	if err := s.repo.Create(ctx, ch); err != nil {
		if errors.Is(err, mysql.ErrChannelNameTaken) {
			return nil, pkg.Writef("a channel with this name already exists")
		}
		return nil, pkg.Writef("%v", err)
	}

	s.pub.Publish(ctx, changefeed.TableChannels, changefeed.OpInsert, ch, nil)
	return ch, nil
}

// Delete 创建者或管理员可删。不存在时静默返回，重复删除幂等
func (s *ChannelService) Delete(ctx context.Context, operatorID, channelID string) error {
	old, err := s.repo.FindByID(ctx, channelID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkg.Loadf("%v", err)
	}

	affected, err := s.repo.DeleteWithPermission(ctx, channelID, operatorID)
	if err != nil {
		return pkg.Writef("%v", err)
	}
	if affected == 0 {
		return pkg.Authorizationf("only the creator or an admin can delete a channel")
	}

	s.pub.Publish(ctx, changefeed.TableChannels, changefeed.OpDelete, nil, old)
	return nil
}
