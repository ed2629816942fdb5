package record

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Table maps an opaque primary key to a Record, iterating in first-insertion
// order. It is used both for loaded source tables and for document sets.
type Table struct {
	rows *orderedmap.OrderedMap[string, *Record]
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{rows: orderedmap.New[string, *Record]()}
}

// Put stores rec under key. On a duplicate key the last write wins and the key
// keeps its original position.
func (t *Table) Put(key string, rec *Record) {
	t.rows.Set(key, rec)
}

// Get returns the Record stored under key.
func (t *Table) Get(key string) (*Record, bool) {
	if t == nil || t.rows == nil {
		return nil, false
	}
	return t.rows.Get(key)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil || t.rows == nil {
		return 0
	}
	return t.rows.Len()
}

// Keys returns the primary keys in iteration order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, t.Len())
	for k := range t.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates rows in insertion order.
func (t *Table) All() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		if t == nil || t.rows == nil {
			return
		}
		for p := t.rows.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Index is a one-to-many mapping from a parent key to the ordered list of its
// children, in first-seen order.
type Index[V any] struct {
	groups *orderedmap.OrderedMap[string, []V]
}

// NewIndex returns an empty Index.
func NewIndex[V any]() *Index[V] {
	return &Index[V]{groups: orderedmap.New[string, []V]()}
}

// Append adds child to the end of key's list, creating the list if needed.
func (x *Index[V]) Append(key string, child V) {
	list, _ := x.groups.Get(key)
	x.groups.Set(key, append(list, child))
}

// Get returns the children of key. The returned slice must not be modified.
func (x *Index[V]) Get(key string) ([]V, bool) {
	if x == nil || x.groups == nil {
		return nil, false
	}
	return x.groups.Get(key)
}

// Len returns the number of parent keys.
func (x *Index[V]) Len() int {
	if x == nil || x.groups == nil {
		return 0
	}
	return x.groups.Len()
}

// All iterates parent keys and their children in first-seen order.
func (x *Index[V]) All() iter.Seq2[string, []V] {
	return func(yield func(string, []V) bool) {
		if x == nil || x.groups == nil {
			return
		}
		for p := x.groups.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}
