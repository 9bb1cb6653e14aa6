package sync

import (
	"testing"

	"instasphere/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id, channelID, content string) *model.Message {
	return &model.Message{ID: id, ChannelID: channelID, Content: content}
}

func TestCollectionUpsertDedup(t *testing.T) {
	c := NewCollection[*model.Message]()

	assert.True(t, c.Upsert(msg("m1", "ch1", "hello")))
	assert.True(t, c.Upsert(msg("m2", "ch1", "world")))
	// 同 id 再次插入是替换，不是追加
	assert.False(t, c.Upsert(msg("m1", "ch1", "hello edited")))

	require.Equal(t, 2, c.Len())
	got, ok := c.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "hello edited", got.Content)

	// 顺序保持插入序，替换不挪位置
	items := c.Items()
	assert.Equal(t, "m1", items[0].ID)
	assert.Equal(t, "m2", items[1].ID)
}

func TestCollectionRemove(t *testing.T) {
	c := NewCollection[*model.Message]()
	c.Upsert(msg("m1", "ch1", "a"))
	c.Upsert(msg("m2", "ch1", "b"))
	c.Upsert(msg("m3", "ch1", "c"))

	assert.True(t, c.Remove("m2"))
	assert.False(t, c.Remove("m2"))
	assert.Equal(t, 2, c.Len())

	// 删除后索引仍然对得上
	items := c.Items()
	assert.Equal(t, "m1", items[0].ID)
	assert.Equal(t, "m3", items[1].ID)
	got, ok := c.Get("m3")
	require.True(t, ok)
	assert.Equal(t, "c", got.Content)
}

func TestCollectionReplace(t *testing.T) {
	c := NewCollection[*model.Message]()
	c.Upsert(msg("old1", "ch1", "stale"))

	c.Replace([]*model.Message{msg("n1", "ch2", "x"), msg("n2", "ch2", "y")})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("old1")
	assert.False(t, ok)
}
