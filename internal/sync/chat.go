package sync

import (
	"context"
	"encoding/json"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
)

// ChatBackend 频道消息的读写面，由消息服务实现
type ChatBackend interface {
	List(ctx context.Context, channelID string, limit int) ([]model.Message, error)
	Send(ctx context.Context, sender *model.User, channelID, content string) (*model.Message, error)
	Delete(ctx context.Context, operatorID, messageID string) error
	Like(ctx context.Context, messageID string) (*model.Message, error)
}

// PresenceBackend 在线名单的读写面
type PresenceBackend interface {
	Heartbeat(ctx context.Context, user *model.User) error
	Offline(ctx context.Context, user *model.User) error
	Online(ctx context.Context) ([]model.UserPresence, error)
}

// ChatSync 活跃频道的消息视图 + 全局在线名单。
// 切频道时代次 +1，迟到的旧频道数据一律丢弃
type ChatSync struct {
	backend  ChatBackend
	presence PresenceBackend
	user     *model.User

	channelID string
	gen       uint64
	state     State
	Messages  *Collection[*model.Message]
	Online    *Collection[*model.UserPresence]
}

func NewChatSync(backend ChatBackend, presence PresenceBackend, user *model.User) *ChatSync {
	return &ChatSync{
		backend:  backend,
		presence: presence,
		user:     user,
		Messages: NewCollection[*model.Message](),
		Online:   NewCollection[*model.UserPresence](),
	}
}

func (c *ChatSync) State() State      { return c.state }
func (c *ChatSync) ChannelID() string { return c.channelID }

// SetChannel 切换活跃频道：先清空再加载，避免旧频道消息闪现。
// 加载返回时若代次已变，说明另一次切换接管，结果作废
func (c *ChatSync) SetChannel(ctx context.Context, channelID string) error {
	c.gen++
	gen := c.gen
	c.channelID = channelID
	c.state = StateLoading
	c.Messages.Clear()

	list, err := c.backend.List(ctx, channelID, 100)
	if gen != c.gen {
		return nil
	}
	if err != nil {
		c.state = StateFailed
		return err
	}
	for i := range list {
		c.Messages.Upsert(&list[i])
	}
	c.state = StateLive
	return nil
}

// Send 写后乐观插入，变更流回放同一行时被去重吸收
func (c *ChatSync) Send(ctx context.Context, content string) (*model.Message, error) {
	m, err := c.backend.Send(ctx, c.user, c.channelID, content)
	if err != nil {
		return nil, err
	}
	if m.ChannelID == c.channelID {
		c.Messages.Upsert(m)
	}
	return m, nil
}

func (c *ChatSync) Delete(ctx context.Context, messageID string) error {
	if err := c.backend.Delete(ctx, c.user.ID, messageID); err != nil {
		return err
	}
	c.Messages.Remove(messageID)
	return nil
}

func (c *ChatSync) Like(ctx context.Context, messageID string) error {
	m, err := c.backend.Like(ctx, messageID)
	if err != nil {
		return err
	}
	if m.ChannelID == c.channelID {
		c.Messages.Upsert(m)
	}
	return nil
}

func (c *ChatSync) Heartbeat(ctx context.Context) error {
	return c.presence.Heartbeat(ctx, c.user)
}

func (c *ChatSync) LoadOnline(ctx context.Context) error {
	list, err := c.presence.Online(ctx)
	if err != nil {
		return err
	}
	items := make([]*model.UserPresence, len(list))
	for i := range list {
		items[i] = &list[i]
	}
	c.Online.Replace(items)
	return nil
}

// Apply 合并一条变更。只接收当前频道的消息，旧频道的迟到事件丢弃
func (c *ChatSync) Apply(ev changefeed.Event) {
	switch ev.Table {
	case changefeed.TableMessages:
		c.applyMessage(ev)
	case changefeed.TableUserPresence:
		c.applyPresence(ev)
	}
}

func (c *ChatSync) applyMessage(ev changefeed.Event) {
	if c.state != StateLive {
		return
	}
	switch ev.Op {
	case changefeed.OpInsert, changefeed.OpUpdate:
		var m model.Message
		if json.Unmarshal(ev.New, &m) != nil {
			return
		}
		if m.ChannelID != c.channelID {
			return
		}
		c.Messages.Upsert(&m)
	case changefeed.OpDelete:
		var m model.Message
		if json.Unmarshal(ev.Old, &m) != nil {
			return
		}
		c.Messages.Remove(m.ID)
	}
}

func (c *ChatSync) applyPresence(ev changefeed.Event) {
	var p model.UserPresence
	if json.Unmarshal(ev.New, &p) != nil {
		return
	}
	if !p.IsOnline {
		c.Online.Remove(p.UserID)
		return
	}
	c.Online.Upsert(&p)
}
