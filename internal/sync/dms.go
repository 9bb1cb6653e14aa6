package sync

import (
	"context"
	"encoding/json"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/repository/mysql"
)

// DMBackend 私信的读写面。认证门槛由后端兜底，这里不重复判定
type DMBackend interface {
	Partners(ctx context.Context, selfID string) ([]mysql.VerifiedPartner, error)
	ListConversation(ctx context.Context, selfID, partnerID string, limit int) ([]model.DirectMessage, error)
	Send(ctx context.Context, sender *model.User, receiverID, content string) (*model.DirectMessage, error)
	Delete(ctx context.Context, operatorID, messageID string) error
}

// DMSync 当前会话对象的私信视图。切对象的代次守卫同 ChatSync
type DMSync struct {
	backend DMBackend
	user    *model.User

	partnerID string
	gen       uint64
	state     State
	Messages  *Collection[*model.DirectMessage]
	Partners  []mysql.VerifiedPartner
}

func NewDMSync(backend DMBackend, user *model.User) *DMSync {
	return &DMSync{
		backend:  backend,
		user:     user,
		Messages: NewCollection[*model.DirectMessage](),
	}
}

func (d *DMSync) State() State      { return d.state }
func (d *DMSync) PartnerID() string { return d.partnerID }

// LoadPartners 刷新侧栏的已认证在线用户
func (d *DMSync) LoadPartners(ctx context.Context) error {
	list, err := d.backend.Partners(ctx, d.user.ID)
	if err != nil {
		return err
	}
	d.Partners = list
	return nil
}

// SetPartner 切换会话对象：清空、加载、代次守卫
func (d *DMSync) SetPartner(ctx context.Context, partnerID string) error {
	d.gen++
	gen := d.gen
	d.partnerID = partnerID
	d.state = StateLoading
	d.Messages.Clear()

	list, err := d.backend.ListConversation(ctx, d.user.ID, partnerID, 100)
	if gen != d.gen {
		return nil
	}
	if err != nil {
		d.state = StateFailed
		return err
	}
	for i := range list {
		d.Messages.Upsert(&list[i])
	}
	d.state = StateLive
	return nil
}

func (d *DMSync) Send(ctx context.Context, content string) (*model.DirectMessage, error) {
	m, err := d.backend.Send(ctx, d.user, d.partnerID, content)
	if err != nil {
		return nil, err
	}
	d.Messages.Upsert(m)
	return m, nil
}

// Delete 软删除成功后乐观地从视图摘除，不等变更流回放
func (d *DMSync) Delete(ctx context.Context, messageID string) error {
	if err := d.backend.Delete(ctx, d.user.ID, messageID); err != nil {
		return err
	}
	d.Messages.Remove(messageID)
	return nil
}

// inConversation 行是否属于当前会话（双向）
func (d *DMSync) inConversation(m *model.DirectMessage) bool {
	if d.partnerID == "" {
		return false
	}
	return (m.SenderID == d.user.ID && m.ReceiverID == d.partnerID) ||
		(m.SenderID == d.partnerID && m.ReceiverID == d.user.ID)
}

func (d *DMSync) Apply(ev changefeed.Event) {
	if ev.Table != changefeed.TableDirectMessages || d.state != StateLive {
		return
	}
	switch ev.Op {
	case changefeed.OpInsert:
		var m model.DirectMessage
		if json.Unmarshal(ev.New, &m) != nil {
			return
		}
		if !d.inConversation(&m) || m.IsDeleted {
			return
		}
		d.Messages.Upsert(&m)
	case changefeed.OpUpdate:
		var m model.DirectMessage
		if json.Unmarshal(ev.New, &m) != nil {
			return
		}
		if !d.inConversation(&m) {
			return
		}
		// 软删除的更新事件等同删除
		if m.IsDeleted {
			d.Messages.Remove(m.ID)
			return
		}
		d.Messages.Upsert(&m)
	case changefeed.OpDelete:
		var m model.DirectMessage
		if json.Unmarshal(ev.Old, &m) != nil {
			return
		}
		d.Messages.Remove(m.ID)
	}
}
