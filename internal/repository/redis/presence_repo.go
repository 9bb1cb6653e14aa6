package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"instasphere/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	// PresenceTTL 心跳键存活时间。客户端掉线不发退出时，键过期即视为离线
	PresenceTTL       = 30 * time.Second
	PresenceKeyPrefix = "presence:user:"
)

var ErrPresenceFailed = errors.New("presence update failed")

type PresenceRepository struct{}

// Announce 广播自己的在线身份：JSON 快照写入带 TTL 的键
func (r *PresenceRepository) Announce(ctx context.Context, p *model.UserPresence) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := Client.Set(ctx, PresenceKeyPrefix+p.UserID, raw, PresenceTTL).Err(); err != nil {
		return ErrPresenceFailed
	}
	return nil
}

// Withdraw 显式下线，删掉心跳键
func (r *PresenceRepository) Withdraw(ctx context.Context, userID string) error {
	return Client.Del(ctx, PresenceKeyPrefix+userID).Err()
}

// ListOnline 当前所有仍在广播的身份的并集
func (r *PresenceRepository) ListOnline(ctx context.Context) ([]model.UserPresence, error) {
	var keys []string
	iter := Client.Scan(ctx, 0, PresenceKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := Client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	out := make([]model.UserPresence, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // 键在 SCAN 和 MGET 之间过期
		}
		var p model.UserPresence
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
