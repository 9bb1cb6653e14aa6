package sync

import (
	"context"
	"encoding/json"
	"testing"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatBackend struct {
	store map[string][]model.Message // channelID -> messages
}

func newFakeChatBackend() *fakeChatBackend {
	return &fakeChatBackend{store: map[string][]model.Message{}}
}

func (f *fakeChatBackend) List(_ context.Context, channelID string, _ int) ([]model.Message, error) {
	return f.store[channelID], nil
}

func (f *fakeChatBackend) Send(_ context.Context, sender *model.User, channelID, content string) (*model.Message, error) {
	m := model.Message{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		UserID:    sender.ID,
		UserName:  sender.Username,
		Content:   content,
	}
	f.store[channelID] = append(f.store[channelID], m)
	return &m, nil
}

func (f *fakeChatBackend) Delete(_ context.Context, _, messageID string) error {
	for ch, list := range f.store {
		for i, m := range list {
			if m.ID == messageID {
				f.store[ch] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeChatBackend) Like(_ context.Context, messageID string) (*model.Message, error) {
	for _, list := range f.store {
		for i := range list {
			if list[i].ID == messageID {
				list[i].Likes++
				return &list[i], nil
			}
		}
	}
	return nil, nil
}

type fakePresenceBackend struct{ online []model.UserPresence }

func (f *fakePresenceBackend) Heartbeat(context.Context, *model.User) error { return nil }
func (f *fakePresenceBackend) Offline(context.Context, *model.User) error   { return nil }
func (f *fakePresenceBackend) Online(context.Context) ([]model.UserPresence, error) {
	return f.online, nil
}

func insertEvent(t *testing.T, table string, row any) changefeed.Event {
	t.Helper()
	raw, err := json.Marshal(row)
	require.NoError(t, err)
	return changefeed.Event{Table: table, Op: changefeed.OpInsert, New: raw}
}

func testUser() *model.User {
	return &model.User{ID: "u1", Username: "alice"}
}

func TestChatSetChannelClearsBeforeLoad(t *testing.T) {
	backend := newFakeChatBackend()
	backend.store["general"] = []model.Message{*msg("g1", "general", "hi")}
	backend.store["random"] = []model.Message{*msg("r1", "random", "yo"), *msg("r2", "random", "yo2")}

	chat := NewChatSync(backend, &fakePresenceBackend{}, testUser())
	require.NoError(t, chat.SetChannel(context.Background(), "general"))
	assert.Equal(t, 1, chat.Messages.Len())

	require.NoError(t, chat.SetChannel(context.Background(), "random"))
	assert.Equal(t, 2, chat.Messages.Len())
	_, stale := chat.Messages.Get("g1")
	assert.False(t, stale, "switching channels must not leak old channel messages")
}

func TestChatApplyDropsOtherChannelEvents(t *testing.T) {
	backend := newFakeChatBackend()
	chat := NewChatSync(backend, &fakePresenceBackend{}, testUser())
	require.NoError(t, chat.SetChannel(context.Background(), "general"))

	chat.Apply(insertEvent(t, changefeed.TableMessages, msg("m-other", "random", "elsewhere")))
	assert.Equal(t, 0, chat.Messages.Len())

	chat.Apply(insertEvent(t, changefeed.TableMessages, msg("m-here", "general", "local")))
	assert.Equal(t, 1, chat.Messages.Len())
}

func TestChatSendThenFeedReplayDedups(t *testing.T) {
	backend := newFakeChatBackend()
	chat := NewChatSync(backend, &fakePresenceBackend{}, testUser())
	require.NoError(t, chat.SetChannel(context.Background(), "general"))

	m, err := chat.Send(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, 1, chat.Messages.Len())

	// 变更流把同一行回放回来，合并后仍是一条
	chat.Apply(insertEvent(t, changefeed.TableMessages, m))
	assert.Equal(t, 1, chat.Messages.Len())
}

func TestChatPresenceOfflineRemoves(t *testing.T) {
	backend := newFakeChatBackend()
	chat := NewChatSync(backend, &fakePresenceBackend{}, testUser())

	online := &model.UserPresence{UserID: "u2", Name: "bob", IsOnline: true}
	raw, _ := json.Marshal(online)
	chat.Apply(changefeed.Event{Table: changefeed.TableUserPresence, Op: changefeed.OpUpdate, New: raw})
	assert.Equal(t, 1, chat.Online.Len())

	online.IsOnline = false
	raw, _ = json.Marshal(online)
	chat.Apply(changefeed.Event{Table: changefeed.TableUserPresence, Op: changefeed.OpUpdate, New: raw})
	assert.Equal(t, 0, chat.Online.Len())
}
