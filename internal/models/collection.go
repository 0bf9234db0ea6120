package models

import (
	"encoding/json"
	"fmt"
)

// Records is the type-erased view of a Collection used by code that walks
// every entity type generically.
type Records interface {
	Len() int
	Records() []Record
	Contains(id int) bool
	AddRecord(r Record) (bool, error)
	json.Marshaler
	json.Unmarshaler
}

// Collection is an insertion-ordered list of records of one type. Records
// with a non-zero id are unique within the collection; identity-less
// records are always appended.
type Collection[T Record] struct {
	items []T
	index map[int]int
}

// Add appends item unless a record with the same non-zero id is already
// present. It reports whether the item was added.
func (c *Collection[T]) Add(item T) bool {
	if id := item.Identity(); id != 0 {
		if c.index == nil {
			c.index = make(map[int]int)
		}
		if _, dup := c.index[id]; dup {
			return false
		}
		c.index[id] = len(c.items)
	}
	c.items = append(c.items, item)
	return true
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id int) (T, bool) {
	var zero T
	if id == 0 || c.index == nil {
		return zero, false
	}
	i, ok := c.index[id]
	if !ok {
		return zero, false
	}
	return c.items[i], true
}

// Items returns a copy of the records in insertion order.
func (c *Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int { return len(c.items) }

func (c *Collection[T]) Contains(id int) bool {
	_, ok := c.Get(id)
	return ok
}

func (c *Collection[T]) Records() []Record {
	out := make([]Record, len(c.items))
	for i, item := range c.items {
		out[i] = item
	}
	return out
}

func (c *Collection[T]) AddRecord(r Record) (bool, error) {
	item, ok := r.(T)
	if !ok {
		var want T
		return false, fmt.Errorf("cannot add %T to collection of %T", r, want)
	}
	return c.Add(item), nil
}

func (c Collection[T]) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

// UnmarshalJSON rejects a list that repeats a non-zero id.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.items, c.index = nil, nil
	for _, item := range items {
		if !c.Add(item) {
			return fmt.Errorf("duplicate %T id %d", item, item.Identity())
		}
	}
	return nil
}
