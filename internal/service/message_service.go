package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxMessageLen = 2000

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_\p{Han}]+)`)

type MessageService struct {
	repo      *mysql.MessageRepository
	userRepo  *mysql.UserRepository
	notifySvc *NotificationService
	pub       *changefeed.Publisher
}

func NewMessageService(notifySvc *NotificationService, pub *changefeed.Publisher) *MessageService {
	return &MessageService{
		repo:      &mysql.MessageRepository{},
		userRepo:  &mysql.UserRepository{},
		notifySvc: notifySvc,
		pub:       pub,
	}
}

func (s *MessageService) List(ctx context.Context, channelID string, limit int) ([]model.Message, error) {
	list, err := s.repo.ListByChannel(ctx, channelID, limit)
	if err != nil {
		return nil, mysql.WrapLoadErr(err)
	}
	return list, nil
}

// Send 落库后发布变更，再异步跑 @提及 通知
func (s *MessageService) Send(ctx context.Context, sender *model.User, channelID, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkg.Validationf("message content is empty")
	}
	if len([]rune(content)) > maxMessageLen {
		return nil, pkg.Validationf("message exceeds %d characters", maxMessageLen)
	}

	m := &model.Message{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		UserID:    sender.ID,
		UserName:  sender.Username,
		AvatarURL: sender.AvatarURL,
		Content:   content,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, pkg.Writef("%v", err)
	}

	s.pub.Publish(ctx, changefeed.TableMessages, changefeed.OpInsert, m, nil)
	s.notifyMentions(ctx, sender, m)
	return m, nil
}

// notifyMentions @用户名 触发 mention 通知，查不到的用户名跳过
func (s *MessageService) notifyMentions(ctx context.Context, sender *model.User, m *model.Message) {
	seen := map[string]bool{}
	for _, match := range mentionPattern.FindAllStringSubmatch(m.Content, -1) {
		name := match[1]
		if seen[name] || name == sender.Username {
			continue
		}
		seen[name] = true

		target, err := s.userRepo.FindByUsername(ctx, name)
		if err != nil {
			continue
		}
		data, _ := json.Marshal(map[string]string{
			"channel_id": m.ChannelID,
			"message_id": m.ID,
		})
		_ = s.notifySvc.Notify(ctx, target.ID, model.NotifyTypeMention,
			sender.Username+" mentioned you", m.Content, string(data))
	}
}

// Delete 作者或管理员可删，不存在时幂等返回
func (s *MessageService) Delete(ctx context.Context, operatorID, messageID string) error {
	old, err := s.repo.FindByID(ctx, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkg.Loadf("%v", err)
	}

	affected, err := s.repo.DeleteWithPermission(ctx, messageID, operatorID)
	if err != nil {
		return pkg.Writef("%v", err)
	}
	if affected == 0 {
		return pkg.Authorizationf("you can only delete your own messages")
	}

	s.pub.Publish(ctx, changefeed.TableMessages, changefeed.OpDelete, nil, old)
	return nil
}

func (s *MessageService) Like(ctx context.Context, messageID string) (*model.Message, error) {
	m, err := s.repo.IncrementLikes(ctx, messageID)
	if err != nil {
		return nil, pkg.Writef("%v", err)
	}
	s.pub.Publish(ctx, changefeed.TableMessages, changefeed.OpUpdate, m, nil)
	return m, nil
}
