package sync

import (
	"context"
	"encoding/json"
	"testing"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationBackend struct {
	missing     bool
	failMarkAll bool
	items       []model.Notification
	markCalls   int
}

func (f *fakeNotificationBackend) List(context.Context, string) ([]model.Notification, error) {
	if f.missing {
		return nil, pkg.ErrCollectionMissing
	}
	return f.items, nil
}

func (f *fakeNotificationBackend) MarkRead(_ context.Context, userID, id string) error {
	f.markCalls++
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].Read = true
			return nil
		}
	}
	return pkg.Authorizationf("notification not found or not yours")
}

func (f *fakeNotificationBackend) MarkAllRead(context.Context, string) error {
	f.markCalls++
	if f.failMarkAll {
		return pkg.Writef("backend unavailable")
	}
	for i := range f.items {
		f.items[i].Read = true
	}
	return nil
}

func TestNotificationsDisabledFallback(t *testing.T) {
	backend := &fakeNotificationBackend{missing: true}
	n := NewNotificationsSync(backend, testUser())

	require.NoError(t, n.Load(context.Background()))
	assert.True(t, n.Disabled())
	assert.Equal(t, 0, n.Notifications.Len())

	// 关闭状态下所有操作无害空转，不打后端
	require.NoError(t, n.MarkRead(context.Background(), "whatever"))
	require.NoError(t, n.MarkAllRead(context.Background()))
	assert.Equal(t, 0, backend.markCalls)
}

func TestNotificationsMarkReadOptimisticRollback(t *testing.T) {
	backend := &fakeNotificationBackend{items: []model.Notification{
		{ID: "n1", UserID: "u1", Title: "mine"},
		{ID: "n2", UserID: "someone-else", Title: "not mine"},
	}}
	n := NewNotificationsSync(backend, testUser())
	require.NoError(t, n.Load(context.Background()))

	require.NoError(t, n.MarkRead(context.Background(), "n1"))
	got, _ := n.Notifications.Get("n1")
	assert.True(t, got.Read)

	// 后端拒绝（不是属主）时本地置位回滚
	err := n.MarkRead(context.Background(), "n2")
	require.Error(t, err)
	got, _ = n.Notifications.Get("n2")
	assert.False(t, got.Read)
}

func TestNotificationsMarkAllReadRollback(t *testing.T) {
	backend := &fakeNotificationBackend{failMarkAll: true, items: []model.Notification{
		{ID: "n1", UserID: "u1"},
		{ID: "n2", UserID: "u1", Read: true},
		{ID: "n3", UserID: "u1"},
	}}
	n := NewNotificationsSync(backend, testUser())
	require.NoError(t, n.Load(context.Background()))
	require.Equal(t, 2, n.Unread())

	// 后端写失败时本地置位全部回滚，已读的不受影响
	err := n.MarkAllRead(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, n.Unread())
	got, _ := n.Notifications.Get("n2")
	assert.True(t, got.Read)
}

func TestNotificationsApplyFiltersOwner(t *testing.T) {
	n := NewNotificationsSync(&fakeNotificationBackend{}, testUser())
	require.NoError(t, n.Load(context.Background()))

	mine, _ := json.Marshal(model.Notification{ID: "n1", UserID: "u1"})
	theirs, _ := json.Marshal(model.Notification{ID: "n2", UserID: "u9"})
	n.Apply(changefeed.Event{Table: changefeed.TableNotifications, Op: changefeed.OpInsert, New: mine})
	n.Apply(changefeed.Event{Table: changefeed.TableNotifications, Op: changefeed.OpInsert, New: theirs})

	assert.Equal(t, 1, n.Notifications.Len())
	assert.Equal(t, 1, n.Unread())
}
