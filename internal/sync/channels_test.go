package sync

import (
	"context"
	"testing"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannelBackend struct {
	channels []model.Channel
}

func (f *fakeChannelBackend) List(context.Context) ([]model.Channel, error) {
	return f.channels, nil
}

func (f *fakeChannelBackend) Create(_ context.Context, operator *model.User, name, description string) (*model.Channel, error) {
	slug := pkg.SlugifyChannelName(name)
	if slug == "" {
		return nil, pkg.Validationf("channel name must contain at least one letter or digit")
	}
	for _, ch := range f.channels {
		if ch.Name == slug {
			return nil, pkg.Writef("a channel with this name already exists")
		}
	}
	ch := model.Channel{ID: uuid.NewString(), Name: slug, Description: description, CreatedBy: operator.ID}
	f.channels = append(f.channels, ch)
	return &ch, nil
}

func (f *fakeChannelBackend) Delete(_ context.Context, _, channelID string) error {
	for i, ch := range f.channels {
		if ch.ID == channelID {
			f.channels = append(f.channels[:i], f.channels[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestChannelsDefaultIsFirst(t *testing.T) {
	backend := &fakeChannelBackend{channels: []model.Channel{
		{ID: "c1", Name: "general"},
		{ID: "c2", Name: "random"},
	}}
	cs := NewChannelsSync(backend, testUser())
	require.NoError(t, cs.Load(context.Background()))

	def := cs.Default()
	require.NotNil(t, def)
	assert.Equal(t, "c1", def.ID)
}

func TestChannelsCreateNormalizesName(t *testing.T) {
	cs := NewChannelsSync(&fakeChannelBackend{}, testUser())
	require.NoError(t, cs.Load(context.Background()))

	ch, err := cs.Create(context.Background(), "My Cool Channel!", "")
	require.NoError(t, err)
	assert.Equal(t, "my-cool-channel", ch.Name)

	// 归一化后撞名
	_, err = cs.Create(context.Background(), "my cool CHANNEL", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrWrite)

	// 全非法字符
	_, err = cs.Create(context.Background(), "!!!", "")
	assert.ErrorIs(t, err, pkg.ErrValidation)
}

func TestChannelsApplyDelete(t *testing.T) {
	backend := &fakeChannelBackend{channels: []model.Channel{{ID: "c1", Name: "general"}}}
	cs := NewChannelsSync(backend, testUser())
	require.NoError(t, cs.Load(context.Background()))

	ev := insertEvent(t, changefeed.TableChannels, &model.Channel{ID: "c2", Name: "random"})
	cs.Apply(ev)
	assert.Equal(t, 2, cs.Channels.Len())

	ev.Op = changefeed.OpDelete
	ev.Old, ev.New = ev.New, nil
	cs.Apply(ev)
	assert.Equal(t, 1, cs.Channels.Len())
}
