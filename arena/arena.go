// Package arena stores values in a slot array addressed by generational handles.
//
// A Handle stays valid until the value it points to is removed; after that the
// slot may be reused, but the old handle is rejected because its generation no
// longer matches. This is how the world owns bodies and shapes without
// back-pointers.
package arena

import (
	"iter"
	"strconv"
)

// Handle addresses a value of type T inside an Arena[T].
// The zero Handle is never valid.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle[T]) IsZero() bool {
	return h.generation == 0
}

func (h Handle[T]) String() string {
	return strconv.FormatUint(uint64(h.index), 10) + "v" + strconv.FormatUint(uint64(h.generation), 10)
}

// Index returns the slot index, stable for the lifetime of the value.
func (h Handle[T]) Index() int {
	return int(h.index)
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// Insert stores value and returns its handle.
func (a *Arena[T]) Insert(value T) Handle[T] {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}

	s := &a.slots[idx]
	s.generation++
	s.value = value
	s.live = true
	a.count++

	return Handle[T]{index: idx, generation: s.generation}
}

// Get returns the value for h, or false if h is stale or zero.
func (a *Arena[T]) Get(h Handle[T]) (T, bool) {
	if !a.Contains(h) {
		var zero T
		return zero, false
	}
	return a.slots[h.index].value, true
}

// Set replaces the value behind a live handle.
func (a *Arena[T]) Set(h Handle[T], value T) bool {
	if !a.Contains(h) {
		return false
	}
	a.slots[h.index].value = value
	return true
}

// Contains reports whether h addresses a live value.
func (a *Arena[T]) Contains(h Handle[T]) bool {
	if h.generation == 0 || int(h.index) >= len(a.slots) {
		return false
	}
	s := a.slots[h.index]
	return s.live && s.generation == h.generation
}

// Remove deletes the value behind h and returns it.
func (a *Arena[T]) Remove(h Handle[T]) (T, bool) {
	var zero T
	if !a.Contains(h) {
		return zero, false
	}

	s := &a.slots[h.index]
	value := s.value
	s.value = zero
	s.live = false
	a.free = append(a.free, h.index)
	a.count--

	return value, true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return a.count
}

// All iterates live values in slot order, which is deterministic for a given
// sequence of inserts and removes.
func (a *Arena[T]) All() iter.Seq2[Handle[T], T] {
	return func(yield func(Handle[T], T) bool) {
		for i := range a.slots {
			s := &a.slots[i]
			if !s.live {
				continue
			}
			if !yield(Handle[T]{index: uint32(i), generation: s.generation}, s.value) {
				return
			}
		}
	}
}

// Cap returns the number of slots, live or free. Slot indices are always < Cap.
func (a *Arena[T]) Cap() int {
	return len(a.slots)
}
