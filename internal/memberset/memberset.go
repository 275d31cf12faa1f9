// Package memberset provides an ordered, duplicate-free set of identities
// with O(1) membership tests and removal and a stable enumeration order for
// index-range queries. Removal swaps the last element into the vacated slot,
// so order is only guaranteed stable between calls that do not mutate the set.
package memberset

import (
	"errors"
	"fmt"
	"sync"
)

var ErrOutOfRange = errors.New("memberset: index out of range")

// Set is safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	items []string
	index map[string]int
}

func New(members ...string) *Set {
	s := &Set{index: make(map[string]int)}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// Add inserts id and reports whether membership changed.
func (s *Set) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, id)
	return true
}

// Remove deletes id and reports whether membership changed.
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return false
	}

	last := len(s.items) - 1
	moved := s.items[last]
	s.items[pos] = moved
	s.index[moved] = pos
	s.items = s.items[:last]
	delete(s.index, id)
	return true
}

func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Values returns the members in canonical order.
func (s *Set) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Range returns the closed interval [from, to] of the canonical ordering. It
// fails when the set is empty, when from > to, or when either index is past
// the end.
func (s *Set) Range(from, to int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.items)
	if n == 0 || from < 0 || from > to || from >= n || to >= n {
		return nil, fmt.Errorf("%w: [%d, %d] with length %d", ErrOutOfRange, from, to, n)
	}

	out := make([]string, to-from+1)
	copy(out, s.items[from:to+1])
	return out, nil
}
