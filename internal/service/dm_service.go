package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DirectMessageService struct {
	repo       *mysql.DirectMessageRepository
	userRepo   *mysql.UserRepository
	verifyRepo *mysql.VerificationRepository
	notifySvc  *NotificationService
	pub        *changefeed.Publisher
}

func NewDirectMessageService(notifySvc *NotificationService, pub *changefeed.Publisher) *DirectMessageService {
	return &DirectMessageService{
		repo:       &mysql.DirectMessageRepository{},
		userRepo:   &mysql.UserRepository{},
		verifyRepo: &mysql.VerificationRepository{},
		notifySvc:  notifySvc,
		pub:        pub,
	}
}

// requireVerified 私信门槛：双方都必须已认证。服务端兜底校验，不信任调用方
func (s *DirectMessageService) requireVerified(ctx context.Context, selfID, partnerID string) error {
	self, err := s.verifyRepo.Get(ctx, selfID)
	if err != nil {
		return pkg.Loadf("%v", err)
	}
	if !self.IsVerified {
		return pkg.Authorizationf("you must be verified to send messages")
	}
	partner, err := s.verifyRepo.Get(ctx, partnerID)
	if err != nil {
		return pkg.Loadf("%v", err)
	}
	if !partner.IsVerified {
		return pkg.Authorizationf("cannot message unverified users")
	}
	return nil
}

// Partners 私信侧栏：已认证且在线的用户
func (s *DirectMessageService) Partners(ctx context.Context, selfID string) ([]mysql.VerifiedPartner, error) {
	list, err := s.verifyRepo.ListVerifiedOnline(ctx, selfID, 2*time.Minute)
	if err != nil {
		return nil, mysql.WrapLoadErr(err)
	}
	return list, nil
}

func (s *DirectMessageService) ListConversation(ctx context.Context, selfID, partnerID string, limit int) ([]model.DirectMessage, error) {
	if err := s.requireVerified(ctx, selfID, partnerID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListConversation(ctx, selfID, partnerID, limit)
	if err != nil {
		return nil, mysql.WrapLoadErr(err)
	}
	return list, nil
}

func (s *DirectMessageService) Send(ctx context.Context, sender *model.User, receiverID, content string) (*model.DirectMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkg.Validationf("message content is empty")
	}
	if len([]rune(content)) > maxMessageLen {
		return nil, pkg.Validationf("message exceeds %d characters", maxMessageLen)
	}
	if receiverID == sender.ID {
		return nil, pkg.Validationf("cannot message yourself")
	}
	if err := s.requireVerified(ctx, sender.ID, receiverID); err != nil {
		return nil, err
	}

	receiver, err := s.userRepo.FindByID(ctx, receiverID)
	if err != nil {
		return nil, pkg.Loadf("%v", err)
	}

	m := &model.DirectMessage{
		ID:             uuid.NewString(),
		SenderID:       sender.ID,
		ReceiverID:     receiver.ID,
		SenderName:     sender.Username,
		ReceiverName:   receiver.Username,
		SenderAvatar:   sender.AvatarURL,
		ReceiverAvatar: receiver.AvatarURL,
		Content:        content,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, pkg.Writef("%v", err)
	}

	s.pub.Publish(ctx, changefeed.TableDirectMessages, changefeed.OpInsert, m, nil)

	data, _ := json.Marshal(map[string]string{"sender_id": sender.ID, "message_id": m.ID})
	_ = s.notifySvc.Notify(ctx, receiver.ID, model.NotifyTypeMessage,
		"New message from "+sender.Username, content, string(data))
	return m, nil
}

// Delete 软删除，仅发送者可删。重复删除幂等
func (s *DirectMessageService) Delete(ctx context.Context, operatorID, messageID string) error {
	affected, err := s.repo.SoftDelete(ctx, messageID, operatorID)
	if err != nil {
		return pkg.Writef("%v", err)
	}
	if affected == 0 {
		m, findErr := s.repo.FindByID(ctx, messageID)
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if findErr != nil {
			return pkg.Loadf("%v", findErr)
		}
		if m.IsDeleted {
			return nil
		}
		return pkg.Authorizationf("you can only delete your own messages")
	}

	m, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return pkg.Loadf("%v", err)
	}
	s.pub.Publish(ctx, changefeed.TableDirectMessages, changefeed.OpUpdate, m, nil)
	return nil
}
