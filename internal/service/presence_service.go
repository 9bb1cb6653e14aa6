package service

import (
	"context"
	"time"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"
	"instasphere/internal/repository/redis"
)

type PresenceService struct {
	mysqlRepo *mysql.PresenceRepository
	redisRepo *redis.PresenceRepository
	pub       *changefeed.Publisher
}

func NewPresenceService(pub *changefeed.Publisher) *PresenceService {
	return &PresenceService{
		mysqlRepo: &mysql.PresenceRepository{},
		redisRepo: &redis.PresenceRepository{},
		pub:       pub,
	}
}

// Heartbeat 心跳：redis 键续 TTL，mysql 落快照行，再广播变更。
// redis 写失败直接报错，行快照失败不拦（下一跳会补上）
func (s *PresenceService) Heartbeat(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	p := &model.UserPresence{
		UserID:    user.ID,
		Name:      user.Username,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		IsOnline:  true,
		LastSeen:  now,
		JoinedAt:  now,
	}
	if err := s.redisRepo.Announce(ctx, p); err != nil {
		return pkg.Writef("%v", err)
	}
	_ = s.mysqlRepo.Upsert(ctx, p)

	s.pub.Publish(ctx, changefeed.TableUserPresence, changefeed.OpUpdate, p, nil)
	return nil
}

// Offline 显式下线
func (s *PresenceService) Offline(ctx context.Context, user *model.User) error {
	if err := s.redisRepo.Withdraw(ctx, user.ID); err != nil {
		return pkg.Writef("%v", err)
	}
	_ = s.mysqlRepo.SetOffline(ctx, user.ID)

	p := &model.UserPresence{
		UserID:    user.ID,
		Name:      user.Username,
		IsOnline:  false,
		LastSeen:  time.Now().UTC(),
	}
	s.pub.Publish(ctx, changefeed.TableUserPresence, changefeed.OpUpdate, p, nil)
	return nil
}

// Online 当前在线用户。redis 心跳键是事实来源
func (s *PresenceService) Online(ctx context.Context) ([]model.UserPresence, error) {
	list, err := s.redisRepo.ListOnline(ctx)
	if err != nil {
		return nil, pkg.Loadf("%v", err)
	}
	return list, nil
}
