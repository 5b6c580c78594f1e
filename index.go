// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"fmt"
	"strings"
)

// Index is the immutable file table of one parsed archive.
type Index struct {
	// entries keeps table order.
	entries []Entry
	// keys holds the lookup key of entries[i] at the same position.
	keys []string
	// lookup maps case-folded normalized path to position in entries.
	lookup map[string]int
	// size is total archive size in bytes.
	size int64
	// dataStart is absolute offset of first payload byte.
	dataStart int64
	// key is the XOR key payload bytes are stored with.
	key byte
}

// newIndex builds lookup tables and rejects duplicate paths.
func newIndex(entries []Entry, size int64, dataStart int64, key byte) (*Index, error) {
	idx := &Index{
		entries:   entries,
		keys:      make([]string, len(entries)),
		lookup:    make(map[string]int, len(entries)),
		size:      size,
		dataStart: dataStart,
		key:       key,
	}

	for i := range entries {
		k := lookupKey(entries[i].Path)
		if k == "" {
			return nil, fmt.Errorf("%w: entry %q has empty normalized path", ErrMalformedArchive, entries[i].Path)
		}

		if prev, ok := idx.lookup[k]; ok {
			return nil, fmt.Errorf("%w: duplicate path %q (also %q)", ErrMalformedArchive, entries[i].Path, entries[prev].Path)
		}

		idx.lookup[k] = i
		idx.keys[i] = k
	}

	return idx, nil
}

// Entries returns a copy of parsed entries in table order.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}

	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}

	return len(idx.entries)
}

// Lookup resolves one entry case-insensitively, treating "/" and "\" as equal.
func (idx *Index) Lookup(name string) (Entry, bool) {
	i, ok := idx.find(name)
	if !ok {
		return Entry{}, false
	}

	return idx.entries[i], true
}

// Size returns total archive size in bytes.
func (idx *Index) Size() int64 {
	return idx.size
}

// DataStart returns absolute offset of the payload region.
func (idx *Index) DataStart() int64 {
	return idx.dataStart
}

// find returns entry position for name.
func (idx *Index) find(name string) (int, bool) {
	if idx == nil {
		return 0, false
	}

	i, ok := idx.lookup[lookupKey(name)]
	return i, ok
}

// childOf reports whether entry i lives under dirKey and returns the remainder path.
// dirKey is a lookup key; empty means archive root.
func (idx *Index) childOf(i int, dirKey string) (string, bool) {
	k := idx.keys[i]
	if dirKey == "" {
		return idx.relative(i, 0), true
	}

	if len(k) <= len(dirKey)+1 || k[len(dirKey)] != '/' || !strings.HasPrefix(k, dirKey) {
		return "", false
	}

	return idx.relative(i, len(dirKey)+1), true
}

// relative returns the case-preserved normalized entry path with a key-length prefix cut.
func (idx *Index) relative(i int, cut int) string {
	p := NormalizePath(idx.entries[i].Path)
	if len(p) != len(idx.keys[i]) {
		// Case folding changed byte length; fall back to segment counting.
		segments := strings.Count(idx.keys[i][:cut], "/")
		parts := strings.SplitN(p, "/", segments+1)
		return parts[len(parts)-1]
	}

	return p[cut:]
}
