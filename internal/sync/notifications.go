package sync

import (
	"context"
	"encoding/json"
	"errors"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
)

// NotificationBackend 通知的读写面
type NotificationBackend interface {
	List(ctx context.Context, userID string) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationsSync 属主的通知视图。集合缺失时整体关闭：
// 列表恒空，标记操作无害空转，不报错
type NotificationsSync struct {
	backend NotificationBackend
	user    *model.User

	state         State
	Notifications *Collection[*model.Notification]
}

func NewNotificationsSync(backend NotificationBackend, user *model.User) *NotificationsSync {
	return &NotificationsSync{
		backend:       backend,
		user:          user,
		Notifications: NewCollection[*model.Notification](),
	}
}

func (n *NotificationsSync) State() State   { return n.state }
func (n *NotificationsSync) Disabled() bool { return n.state == StateDisabled }

func (n *NotificationsSync) Load(ctx context.Context) error {
	n.state = StateLoading
	list, err := n.backend.List(ctx, n.user.ID)
	if err != nil {
		if errors.Is(err, pkg.ErrCollectionMissing) {
			n.Notifications.Clear()
			n.state = StateDisabled
			return nil
		}
		n.state = StateFailed
		return err
	}
	items := make([]*model.Notification, len(list))
	for i := range list {
		items[i] = &list[i]
	}
	n.Notifications.Replace(items)
	n.state = StateLive
	return nil
}

func (n *NotificationsSync) Unread() int {
	count := 0
	for _, item := range n.Notifications.Items() {
		if !item.Read {
			count++
		}
	}
	return count
}

// MarkRead 乐观置位，后端拒绝时回滚
func (n *NotificationsSync) MarkRead(ctx context.Context, notificationID string) error {
	if n.state == StateDisabled {
		return nil
	}
	item, ok := n.Notifications.Get(notificationID)
	if ok {
		item.Read = true
	}
	if err := n.backend.MarkRead(ctx, n.user.ID, notificationID); err != nil {
		if ok {
			item.Read = false
		}
		return err
	}
	return nil
}

// MarkAllRead 乐观置位全部未读项，后端写失败时逐个回滚
func (n *NotificationsSync) MarkAllRead(ctx context.Context) error {
	if n.state == StateDisabled {
		return nil
	}
	var flipped []*model.Notification
	for _, item := range n.Notifications.Items() {
		if !item.Read {
			item.Read = true
			flipped = append(flipped, item)
		}
	}
	if err := n.backend.MarkAllRead(ctx, n.user.ID); err != nil {
		for _, item := range flipped {
			item.Read = false
		}
		return err
	}
	return nil
}

// Apply 只接收属主自己的通知
func (n *NotificationsSync) Apply(ev changefeed.Event) {
	if n.state != StateLive || ev.Table != changefeed.TableNotifications {
		return
	}
	switch ev.Op {
	case changefeed.OpInsert, changefeed.OpUpdate:
		var item model.Notification
		if json.Unmarshal(ev.New, &item) != nil {
			return
		}
		if item.UserID != n.user.ID {
			return
		}
		n.Notifications.Upsert(&item)
	case changefeed.OpDelete:
		var item model.Notification
		if json.Unmarshal(ev.Old, &item) != nil {
			return
		}
		n.Notifications.Remove(item.ID)
	}
}
