package sync

import (
	"context"
	"testing"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(testUser(), Backends{
		Chat:          newFakeChatBackend(),
		Presence:      &fakePresenceBackend{},
		Channels:      &fakeChannelBackend{channels: []model.Channel{{ID: "c1", Name: "general"}}},
		DMs:           newFakeDMBackend("u1", "u2"),
		Posts:         &fakePostBackend{},
		Notifications: &fakeNotificationBackend{},
	}, nil)

	ctx := context.Background()
	require.NoError(t, s.Channels.Load(ctx))
	require.NoError(t, s.Chat.SetChannel(ctx, s.Channels.Default().ID))
	require.NoError(t, s.Posts.Load(ctx))
	require.NoError(t, s.Notifications.Load(ctx))
	return s
}

func TestSessionDispatchRoutesByTable(t *testing.T) {
	s := newTestSession(t)

	var changed []string
	s.OnChange = func(table string) { changed = append(changed, table) }

	s.dispatch(insertEvent(t, changefeed.TableMessages, msg("m1", "c1", "hello")))
	s.dispatch(insertEvent(t, changefeed.TableChannels, &model.Channel{ID: "c2", Name: "random"}))
	s.dispatch(insertEvent(t, changefeed.TableNotifications, &model.Notification{ID: "n1", UserID: "u1"}))

	assert.Equal(t, 1, s.Chat.Messages.Len())
	assert.Equal(t, 2, s.Channels.Channels.Len())
	assert.Equal(t, 1, s.Notifications.Notifications.Len())
	assert.Equal(t, []string{
		changefeed.TableMessages,
		changefeed.TableChannels,
		changefeed.TableNotifications,
	}, changed)
}

func TestSessionDoAfterLoopExitDoesNotBlock(t *testing.T) {
	s := newTestSession(t)
	events := make(chan changefeed.Event)
	s.events = events

	go s.Run(context.Background())

	// 订阅连接断开：事件 channel 关闭，主循环退出
	close(events)
	<-s.Done()

	// 没有消费者了，投递必须立即失败而不是卡在满缓冲上
	for i := 0; i < cap(s.cmds)+5; i++ {
		assert.False(t, s.Do(func(context.Context) {}))
	}
}

func TestSessionDispatchIgnoresUnknownTable(t *testing.T) {
	s := newTestSession(t)
	fired := false
	s.OnChange = func(string) { fired = true }

	s.dispatch(changefeed.Event{Table: "unknown_table", Op: changefeed.OpInsert})
	assert.False(t, fired)
}
