package catalog

// identityMap holds at most one live instance per id.
type identityMap[T any] struct {
	items map[int64]*T
}

func newIdentityMap[T any]() *identityMap[T] {
	return &identityMap[T]{items: make(map[int64]*T)}
}

func (m *identityMap[T]) get(id int64) (*T, bool) {
	v, ok := m.items[id]
	return v, ok
}

func (m *identityMap[T]) put(id int64, v *T) {
	m.items[id] = v
}

func (m *identityMap[T]) evict(id int64) {
	delete(m.items, id)
}

// resolve returns the cached instance for id, or registers the one
// produced by build. refresh, when non-nil, is applied to a cache hit.
func (m *identityMap[T]) resolve(id int64, build func() *T, refresh func(*T)) *T {
	if v, ok := m.items[id]; ok {
		if refresh != nil {
			refresh(v)
		}
		return v
	}
	v := build()
	m.items[id] = v
	return v
}

func (m *identityMap[T]) len() int {
	return len(m.items)
}

func (m *identityMap[T]) clear() {
	clear(m.items)
}
