// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import "fmt"

// Handle is an opaque token for a file opened with FOpen.
// The zero value is never issued.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

// String formats handle for logs.
func (h Handle) String() string {
	return fmt.Sprintf("file#%d.%d", h.index, h.gen)
}

// SearchHandle is an opaque token for a search started with FindFirstFile.
// The zero value is never issued.
type SearchHandle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h SearchHandle) IsZero() bool {
	return h.gen == 0
}

// String formats handle for logs.
func (h SearchHandle) String() string {
	return fmt.Sprintf("search#%d.%d", h.index, h.gen)
}

// slotState classifies a token looked up in a table.
type slotState int

const (
	// slotUnknown means the token was never issued by this table.
	slotUnknown slotState = iota
	// slotClosed means the token was issued and later released.
	slotClosed
	// slotLive means the token refers to a live value.
	slotLive
)

// slot is one arena cell; gen increases every time the cell is reused.
type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// table is an arena of values addressed by generation-checked indices.
type table[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// insert stores v and returns its index and generation.
func (t *table[T]) insert(v T) (uint32, uint32) {
	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot[T]{})
		index = uint32(len(t.slots) - 1) //nolint:gosec // handle count is bounded by memory
	}

	s := &t.slots[index]
	s.gen++
	if s.gen == 0 {
		// zero is reserved for the unset handle
		s.gen = 1
	}

	s.value = v
	s.live = true
	t.live++

	return index, s.gen
}

// get resolves a token.
func (t *table[T]) get(index uint32, gen uint32) (T, slotState) {
	var zero T
	if gen == 0 || int(index) >= len(t.slots) {
		return zero, slotUnknown
	}

	s := &t.slots[index]
	switch {
	case gen > s.gen:
		return zero, slotUnknown
	case gen == s.gen && s.live:
		return s.value, slotLive
	default:
		return zero, slotClosed
	}
}

// remove releases a live token and returns its value.
func (t *table[T]) remove(index uint32, gen uint32) (T, slotState) {
	v, state := t.get(index, gen)
	if state != slotLive {
		return v, state
	}

	s := &t.slots[index]
	var zero T
	s.value = zero
	s.live = false
	t.free = append(t.free, index)
	t.live--

	return v, slotLive
}

// count returns number of live values.
func (t *table[T]) count() int {
	return t.live
}
