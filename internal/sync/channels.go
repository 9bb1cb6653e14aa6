package sync

import (
	"context"
	"encoding/json"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
)

// ChannelBackend 频道目录的读写面
type ChannelBackend interface {
	List(ctx context.Context) ([]model.Channel, error)
	Create(ctx context.Context, operator *model.User, name, description string) (*model.Channel, error)
	Delete(ctx context.Context, operatorID, channelID string) error
}

// ChannelsSync 频道目录视图。第一条频道是默认活跃频道
type ChannelsSync struct {
	backend ChannelBackend
	user    *model.User

	state    State
	Channels *Collection[*model.Channel]
}

func NewChannelsSync(backend ChannelBackend, user *model.User) *ChannelsSync {
	return &ChannelsSync{
		backend:  backend,
		user:     user,
		Channels: NewCollection[*model.Channel](),
	}
}

func (c *ChannelsSync) State() State { return c.state }

func (c *ChannelsSync) Load(ctx context.Context) error {
	c.state = StateLoading
	list, err := c.backend.List(ctx)
	if err != nil {
		c.state = StateFailed
		return err
	}
	items := make([]*model.Channel, len(list))
	for i := range list {
		items[i] = &list[i]
	}
	c.Channels.Replace(items)
	c.state = StateLive
	return nil
}

// Default 默认活跃频道，目录为空时返回 nil
func (c *ChannelsSync) Default() *model.Channel {
	items := c.Channels.Items()
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func (c *ChannelsSync) Create(ctx context.Context, name, description string) (*model.Channel, error) {
	ch, err := c.backend.Create(ctx, c.user, name, description)
	if err != nil {
		return nil, err
	}
	c.Channels.Upsert(ch)
	return ch, nil
}

func (c *ChannelsSync) Delete(ctx context.Context, channelID string) error {
	if err := c.backend.Delete(ctx, c.user.ID, channelID); err != nil {
		return err
	}
	c.Channels.Remove(channelID)
	return nil
}

func (c *ChannelsSync) Apply(ev changefeed.Event) {
	if c.state != StateLive {
		return
	}
	switch ev.Op {
	case changefeed.OpInsert, changefeed.OpUpdate:
		var ch model.Channel
		if json.Unmarshal(ev.New, &ch) != nil {
			return
		}
		c.Channels.Upsert(&ch)
	case changefeed.OpDelete:
		var ch model.Channel
		if json.Unmarshal(ev.Old, &ch) != nil {
			return
		}
		c.Channels.Remove(ch.ID)
	}
}
