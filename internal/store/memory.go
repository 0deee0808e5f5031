package store

import (
	"sort"
	"sync"
)

// Table is a concurrency-safe in-memory keyed table with unique indexes.
// Memory repositories build on it for tests and local runs.
type Table[T any] struct {
	mu      sync.RWMutex
	key     func(T) string
	rows    map[string]T
	order   []string
	uniques []uniqueIndex[T]
}

type uniqueIndex[T any] struct {
	field string
	value func(T) string
}

func NewTable[T any](key func(T) string) *Table[T] {
	return &Table[T]{key: key, rows: make(map[string]T)}
}

// Unique registers a unique index; empty values are not indexed.
func (t *Table[T]) Unique(field string, value func(T) string) *Table[T] {
	t.uniques = append(t.uniques, uniqueIndex[T]{field: field, value: value})
	return t
}

func (t *Table[T]) Get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return row, nil
}

func (t *Table[T]) Insert(row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.key(row)
	if _, ok := t.rows[id]; ok {
		return Unique("id")
	}
	if err := t.checkUnique(row, ""); err != nil {
		return err
	}
	t.rows[id] = row
	t.order = append(t.order, id)
	return nil
}

// Replace overwrites an existing row, keeping unique indexes intact.
func (t *Table[T]) Replace(row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.key(row)
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	if err := t.checkUnique(row, id); err != nil {
		return err
	}
	t.rows[id] = row
	return nil
}

func (t *Table[T]) Delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	for i, k := range t.order {
		if k == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Find returns the first row matching fn in insertion order.
func (t *Table[T]) Find(fn func(T) bool) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.order {
		if row := t.rows[id]; fn(row) {
			return row, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// Scan returns rows matching fn (all rows when fn is nil) in insertion order.
func (t *Table[T]) Scan(fn func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if fn == nil || fn(row) {
			out = append(out, row)
		}
	}
	return out
}

// Page slices rows for 1-based page numbers.
func Page[T any](rows []T, page, limit int) []T {
	if limit <= 0 {
		return rows
	}
	start := (page - 1) * limit
	if start < 0 || start >= len(rows) {
		return []T{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// SortBy stable-sorts rows in place.
func SortBy[T any](rows []T, less func(a, b T) bool) {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

func (t *Table[T]) checkUnique(row T, selfID string) error {
	for _, idx := range t.uniques {
		v := idx.value(row)
		if v == "" {
			continue
		}
		for id, existing := range t.rows {
			if id == selfID {
				continue
			}
			if idx.value(existing) == v {
				return Unique(idx.field)
			}
		}
	}
	return nil
}
