package sync

import (
	"context"
	"encoding/json"
	"testing"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDMBackend struct {
	verified map[string]bool
	messages []model.DirectMessage
}

func newFakeDMBackend(verified ...string) *fakeDMBackend {
	f := &fakeDMBackend{verified: map[string]bool{}}
	for _, id := range verified {
		f.verified[id] = true
	}
	return f
}

func (f *fakeDMBackend) Partners(context.Context, string) ([]mysql.VerifiedPartner, error) {
	return nil, nil
}

func (f *fakeDMBackend) ListConversation(_ context.Context, selfID, partnerID string, _ int) ([]model.DirectMessage, error) {
	if !f.verified[selfID] {
		return nil, pkg.Authorizationf("you must be verified to send messages")
	}
	if !f.verified[partnerID] {
		return nil, pkg.Authorizationf("cannot message unverified users")
	}
	var out []model.DirectMessage
	for _, m := range f.messages {
		pair := (m.SenderID == selfID && m.ReceiverID == partnerID) ||
			(m.SenderID == partnerID && m.ReceiverID == selfID)
		if pair && !m.IsDeleted {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeDMBackend) Send(_ context.Context, sender *model.User, receiverID, content string) (*model.DirectMessage, error) {
	if !f.verified[sender.ID] {
		return nil, pkg.Authorizationf("you must be verified to send messages")
	}
	if !f.verified[receiverID] {
		return nil, pkg.Authorizationf("cannot message unverified users")
	}
	m := model.DirectMessage{
		ID:         uuid.NewString(),
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Content:    content,
	}
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeDMBackend) Delete(_ context.Context, operatorID, messageID string) error {
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			if f.messages[i].SenderID != operatorID {
				return pkg.Authorizationf("you can only delete your own messages")
			}
			f.messages[i].IsDeleted = true
			f.messages[i].Content = "[Message deleted]"
			return nil
		}
	}
	return nil
}

func TestDMVerificationGate(t *testing.T) {
	// 自己已认证，对方未认证
	backend := newFakeDMBackend("u1")
	dm := NewDMSync(backend, testUser())

	err := dm.SetPartner(context.Background(), "u2")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrAuthorization)
	assert.Contains(t, err.Error(), "cannot message unverified users")

	_, err = dm.Send(context.Background(), "hi")
	assert.ErrorIs(t, err, pkg.ErrAuthorization)
}

func TestDMSendAndSoftDelete(t *testing.T) {
	backend := newFakeDMBackend("u1", "u2")
	dm := NewDMSync(backend, testUser())
	require.NoError(t, dm.SetPartner(context.Background(), "u2"))

	m, err := dm.Send(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, dm.Messages.Len())

	// 软删除后乐观地从视图摘除
	require.NoError(t, dm.Delete(context.Background(), m.ID))
	assert.Equal(t, 0, dm.Messages.Len())

	// 重复删除幂等
	require.NoError(t, dm.Delete(context.Background(), m.ID))
}

func TestDMApplySoftDeleteUpdateRemoves(t *testing.T) {
	backend := newFakeDMBackend("u1", "u2")
	dm := NewDMSync(backend, testUser())
	require.NoError(t, dm.SetPartner(context.Background(), "u2"))

	m := model.DirectMessage{ID: "d1", SenderID: "u2", ReceiverID: "u1", Content: "hey"}
	raw, _ := json.Marshal(m)
	dm.Apply(changefeed.Event{Table: changefeed.TableDirectMessages, Op: changefeed.OpInsert, New: raw})
	assert.Equal(t, 1, dm.Messages.Len())

	m.IsDeleted = true
	m.Content = "[Message deleted]"
	raw, _ = json.Marshal(m)
	dm.Apply(changefeed.Event{Table: changefeed.TableDirectMessages, Op: changefeed.OpUpdate, New: raw})
	assert.Equal(t, 0, dm.Messages.Len())
}

func TestDMApplyIgnoresOtherConversations(t *testing.T) {
	backend := newFakeDMBackend("u1", "u2")
	dm := NewDMSync(backend, testUser())
	require.NoError(t, dm.SetPartner(context.Background(), "u2"))

	other := model.DirectMessage{ID: "d2", SenderID: "u3", ReceiverID: "u4", Content: "not ours"}
	raw, _ := json.Marshal(other)
	dm.Apply(changefeed.Event{Table: changefeed.TableDirectMessages, Op: changefeed.OpInsert, New: raw})
	assert.Equal(t, 0, dm.Messages.Len())
}
