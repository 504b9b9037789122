// Package multikeymap implements a map where several keys can alias
// the same value — the structure the model uses to represent hard
// links: one inode, many paths.
package multikeymap

import "errors"

var (
	// ErrKeyExists is returned by Insert when k is already present.
	ErrKeyExists = errors.New("multikeymap: key already exists")
	// ErrKeyNotFound is returned when an operation names an unknown key.
	ErrKeyNotFound = errors.New("multikeymap: key not found")
)

// entry is the shared value plus the live set of keys aliasing it.
type entry[K comparable, V any] struct {
	value V
	keys  map[K]struct{}
}

// Map is a multi-key map: Insert binds a fresh key to a value;
// InsertAlias adds another key to an existing value's alias set.
// Zero value is not usable; use New.
type Map[K comparable, V any] struct {
	byKey map[K]*entry[K, V]
}

// New creates an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{byKey: make(map[K]*entry[K, V])}
}

// Insert binds k to v as a brand new value. Returns ErrKeyExists if k
// is already present.
func (m *Map[K, V]) Insert(k K, v V) error {
	if _, ok := m.byKey[k]; ok {
		return ErrKeyExists
	}
	e := &entry[K, V]{value: v, keys: map[K]struct{}{k: {}}}
	m.byKey[k] = e
	return nil
}

// InsertAlias makes newKey an alias of existingKey, sharing its
// value. Returns ErrKeyNotFound if existingKey is absent, ErrKeyExists
// if newKey is already bound to something.
func (m *Map[K, V]) InsertAlias(existingKey, newKey K) error {
	e, ok := m.byKey[existingKey]
	if !ok {
		return ErrKeyNotFound
	}
	if _, ok := m.byKey[newKey]; ok {
		return ErrKeyExists
	}
	e.keys[newKey] = struct{}{}
	m.byKey[newKey] = e
	return nil
}

// Remove drops k's value and every alias of it, returning the value
// that was removed.
func (m *Map[K, V]) Remove(k K) (V, error) {
	e, ok := m.byKey[k]
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	for alias := range e.keys {
		delete(m.byKey, alias)
	}
	return e.value, nil
}

// RemoveAlias removes just k, leaving any other aliases of its value
// intact. Returns the number of aliases remaining (0 means the value
// was dropped along with the last alias).
func (m *Map[K, V]) RemoveAlias(k K) (int, error) {
	e, ok := m.byKey[k]
	if !ok {
		return 0, ErrKeyNotFound
	}
	delete(e.keys, k)
	delete(m.byKey, k)
	remaining := len(e.keys)
	return remaining, nil
}

// Aliases returns every key sharing k's value, including k itself.
func (m *Map[K, V]) Aliases(k K) ([]K, error) {
	e, ok := m.byKey[k]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]K, 0, len(e.keys))
	for alias := range e.keys {
		out = append(out, alias)
	}
	return out, nil
}

// AreAliases reports whether a and b are both present and name the
// same value.
func (m *Map[K, V]) AreAliases(a, b K) bool {
	ea, ok := m.byKey[a]
	if !ok {
		return false
	}
	eb, ok := m.byKey[b]
	if !ok {
		return false
	}
	return ea == eb
}

// Keys returns every key currently bound, in no particular order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, 0, len(m.byKey))
	for k := range m.byKey {
		out = append(out, k)
	}
	return out
}

// Get returns k's value and whether k is bound.
func (m *Map[K, V]) Get(k K) (V, bool) {
	e, ok := m.byKey[k]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetMut returns a pointer to k's value so the caller can mutate it
// in place (mutations are visible through every alias, since they all
// share the same entry).
func (m *Map[K, V]) GetMut(k K) (*V, bool) {
	e, ok := m.byKey[k]
	if !ok {
		return nil, false
	}
	return &e.value, true
}

// ContainsKey reports whether k is bound to anything.
func (m *Map[K, V]) ContainsKey(k K) bool {
	_, ok := m.byKey[k]
	return ok
}

// Len returns the number of distinct values stored (not the number of
// keys/aliases).
func (m *Map[K, V]) Len() int {
	seen := make(map[*entry[K, V]]struct{})
	for _, e := range m.byKey {
		seen[e] = struct{}{}
	}
	return len(seen)
}
