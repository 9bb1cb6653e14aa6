// Package changefeed 是行级变更订阅通道：写路径提交后发布一条
// insert/update/delete 信封，每个会话的同步模块按表订阅并据此合并本地集合。
// 单表内按投递顺序应用，跨表不承诺顺序。
package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"instasphere/internal/pkg"
	"instasphere/internal/repository/redis"
)

// 订阅表名，与存储层表一一对应
const (
	TableChannels       = "channels"
	TableMessages       = "messages"
	TableDirectMessages = "direct_messages"
	TablePosts          = "posts"
	TablePostComments   = "post_comments"
	TablePostLikes      = "post_likes"
	TableNotifications  = "notifications"
	TableUserPresence   = "user_presence"
	TableVerification   = "user_verification"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event 变更信封。New/Old 是行的 JSON 快照，delete 只带 Old
type Event struct {
	Table string          `json:"table"`
	Op    string          `json:"op"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}

func feedChannel(table string) string {
	return "feed:" + table
}

type Publisher struct{}

func NewPublisher() *Publisher { return &Publisher{} }

// Publish 提交成功之后调用。发布失败只记日志，不回滚业务写入：
// 订阅方下一次 Load 仍能追平
func (p *Publisher) Publish(ctx context.Context, table, op string, newRow, oldRow any) {
	ev := Event{Table: table, Op: op}
	if newRow != nil {
		raw, err := json.Marshal(newRow)
		if err != nil {
			log.Printf("changefeed: marshal new row for %s failed: %v", table, err)
			return
		}
		ev.New = raw
	}
	if oldRow != nil {
		raw, err := json.Marshal(oldRow)
		if err != nil {
			log.Printf("changefeed: marshal old row for %s failed: %v", table, err)
			return
		}
		ev.Old = raw
	}
	payload, _ := json.Marshal(ev)
	if err := redis.Client.Publish(ctx, feedChannel(table), payload).Err(); err != nil {
		log.Printf("changefeed: publish %s %s failed: %v", table, op, err)
	}
}

type Subscriber struct{}

func NewSubscriber() *Subscriber { return &Subscriber{} }

// Subscribe 按表订阅。返回的 channel 在 ctx 结束或连接断开时关闭
func (s *Subscriber) Subscribe(ctx context.Context, tables ...string) (<-chan Event, error) {
	channels := make([]string, len(tables))
	for i, t := range tables {
		channels[i] = feedChannel(t)
	}

	ps := redis.Client.Subscribe(ctx, channels...)
	// 等订阅确认，失败时报 SubscriptionError
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("%w: %v", pkg.ErrSubscription, err)
	}

	out := make(chan Event, 64)
	go func() {
		defer close(out)
		defer ps.Close()
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("changefeed: bad event payload on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
