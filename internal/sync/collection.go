// Package sync 维护每个会话的实时本地视图：首屏快照 + 变更流合并。
// 所有模块都由会话的单一 goroutine 驱动，内部不加锁。
package sync

// Entity 可进集合的实体，按 EntityID 去重
type Entity interface {
	EntityID() string
}

// Collection 按插入序保存实体，id 相同的后来者替换前者。
// 快照加载和变更流插入可能送达同一行，去重保证应用两次等于一次
type Collection[T Entity] struct {
	items []T
	index map[string]int
}

func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{index: make(map[string]int)}
}

// Replace 整体换成一份新快照
func (c *Collection[T]) Replace(items []T) {
	c.items = c.items[:0]
	c.index = make(map[string]int, len(items))
	for _, it := range items {
		c.Upsert(it)
	}
}

// Upsert 不存在则追加，存在则原位替换。返回是否是新增
func (c *Collection[T]) Upsert(item T) bool {
	id := item.EntityID()
	if i, ok := c.index[id]; ok {
		c.items[i] = item
		return false
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, item)
	return true
}

// Remove 按 id 删除，不存在时无副作用
func (c *Collection[T]) Remove(id string) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].EntityID()] = j
	}
	return true
}

func (c *Collection[T]) Get(id string) (T, bool) {
	var zero T
	i, ok := c.index[id]
	if !ok {
		return zero, false
	}
	return c.items[i], true
}

// Items 当前视图的浅拷贝
func (c *Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int { return len(c.items) }

func (c *Collection[T]) Clear() {
	c.items = c.items[:0]
	c.index = make(map[string]int)
}
