// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"fmt"
	"iter"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// searchState tracks one enumeration lifecycle.
type searchState int

const (
	searchCreated searchState = iota
	searchActive
	searchExhausted
	searchClosed
)

// search walks archive entries (mounts in order, table order) then one host directory.
type search struct {
	// mounts is the mount list snapshot taken by FindFirstFile.
	mounts []*mount
	// seen holds case-folded names already yielded by the archive phase.
	seen map[string]struct{}
	// dirKey is the archive directory lookup key; empty means root.
	dirKey string
	// diskDir is the host directory to enumerate after archives.
	diskDir string
	// base is the final-segment glob.
	base string
	// disk holds host records once loaded.
	disk []FindData
	// mountPos and entryPos point to the next archive entry to examine.
	mountPos int
	entryPos int
	// diskPos points to the next host record.
	diskPos    int
	diskLoaded bool
	state      searchState
}

// newSearch prepares state for pattern over a mount snapshot.
func newSearch(pattern string, mounts []*mount) *search {
	dir, base := splitPattern(pattern)

	diskDir := "."
	if dir != "" {
		diskDir = diskPath(dir)
	}

	return &search{
		mounts:  mounts,
		seen:    make(map[string]struct{}),
		dirKey:  lookupKey(dir),
		diskDir: diskDir,
		base:    base,
		state:   searchCreated,
	}
}

// next returns the next matching record; ok is false when the namespace is exhausted.
func (s *search) next(disk afero.Fs) (FindData, bool) {
	if fd, ok := s.nextArchive(); ok {
		return fd, true
	}

	if !s.diskLoaded {
		s.disk = loadDiskRecords(disk, s.diskDir, s.base)
		s.diskLoaded = true
	}

	if s.diskPos < len(s.disk) {
		fd := s.disk[s.diskPos]
		s.diskPos++
		return fd, true
	}

	s.disk = nil
	return FindData{}, false
}

// nextArchive advances the archive phase. Entries nested deeper than the
// searched directory produce one directory record per distinct child name.
func (s *search) nextArchive() (FindData, bool) {
	for s.mountPos < len(s.mounts) {
		idx := s.mounts[s.mountPos].index
		for s.entryPos < idx.Len() {
			pos := s.entryPos
			s.entryPos++

			rel, ok := idx.childOf(pos, s.dirKey)
			if !ok {
				continue
			}

			name, isDir := rel, false
			if slash := strings.IndexByte(rel, '/'); slash >= 0 {
				name, isDir = rel[:slash], true
			}

			if !matchWildcard(s.base, name) {
				continue
			}

			key := strings.ToUpper(name)
			if _, dup := s.seen[key]; dup {
				continue
			}
			s.seen[key] = struct{}{}

			entry := idx.entries[pos]
			if isDir {
				return archiveDirData(name, entry.FileTime), true
			}

			return archiveFileData(name, entry), true
		}

		s.mountPos++
		s.entryPos = 0
	}

	return FindData{}, false
}

// loadDiskRecords lists dir on the host filesystem the way FindFirstFile does:
// "." and ".." first for non-root directories, then entries sorted by name.
// A missing directory yields no records.
func loadDiskRecords(disk afero.Fs, dir string, base string) []FindData {
	infos, err := afero.ReadDir(disk, dir)
	if err != nil {
		return nil
	}

	out := make([]FindData, 0, len(infos)+2)
	if dir != "/" {
		if self, err := disk.Stat(dir); err == nil && matchWildcard(base, ".") {
			out = append(out, diskFindData(".", self))
		}

		parent, err := disk.Stat(path.Dir(dir))
		if err != nil {
			parent, err = disk.Stat(dir)
		}

		if err == nil && matchWildcard(base, "..") {
			out = append(out, diskFindData("..", parent))
		}
	}

	for _, info := range infos {
		if matchWildcard(base, info.Name()) {
			out = append(out, diskFindData(info.Name(), info))
		}
	}

	return out
}

// FindFirstFile starts a search and returns its first record.
// It fails with ErrNotFound when nothing matches; no handle is allocated then.
func (i *Interface) FindFirstFile(pattern string) (SearchHandle, FindData, error) {
	if err := validateInput("pattern", pattern); err != nil {
		return SearchHandle{}, FindData{}, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return SearchHandle{}, FindData{}, ErrUseAfterClose
	}

	mounts := make([]*mount, len(i.mounts))
	copy(mounts, i.mounts)

	s := newSearch(pattern, mounts)
	fd, ok := s.next(i.disk)
	if !ok {
		return SearchHandle{}, FindData{}, fmt.Errorf("%w: no match for %q", ErrNotFound, pattern)
	}

	s.state = searchActive
	index, gen := i.searches.insert(s)
	h := SearchHandle{index: index, gen: gen}
	i.log().Debug("search started", "pattern", pattern, "handle", h.String())
	return h, fd, nil
}

// FindNextFile returns the next record of a search. ok is false once the
// search is exhausted, and stays false on every later call.
func (i *Interface) FindNextFile(h SearchHandle) (FindData, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	s, err := i.lookupSearch(h)
	if err != nil {
		return FindData{}, false, err
	}

	if s.state == searchExhausted {
		return FindData{}, false, nil
	}

	fd, ok := s.next(i.disk)
	if !ok {
		s.state = searchExhausted
		s.mounts = nil
		return FindData{}, false, nil
	}

	return fd, true, nil
}

// FindClose releases a search. Closing an already closed search is a no-op.
func (i *Interface) FindClose(h SearchHandle) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	s, state := i.searches.remove(h.index, h.gen)
	switch state {
	case slotLive:
		s.state = searchClosed
		return nil
	case slotClosed:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
}

// lookupSearch resolves a live search handle. Caller must hold i.mu.
func (i *Interface) lookupSearch(h SearchHandle) (*search, error) {
	s, state := i.searches.get(h.index, h.gen)
	switch state {
	case slotLive:
		return s, nil
	case slotClosed:
		return nil, fmt.Errorf("%w: %s", ErrUseAfterClose, h)
	default:
		if i.closed {
			return nil, ErrUseAfterClose
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
}

// Search is a buffered iterator over FindFirstFile/FindNextFile.
// It always holds the record to return next, fetching one ahead.
type Search struct {
	iface    *Interface
	err      error
	pending  FindData
	handle   SearchHandle
	buffered bool
	closed   bool
}

// FindFile starts a search for pattern ("*" and "?" within one directory level).
// Host enumeration includes "." and ".." records; see FindData.IsDotEntry.
func (i *Interface) FindFile(pattern string) (*Search, error) {
	h, fd, err := i.FindFirstFile(pattern)
	if err != nil {
		return nil, err
	}

	return &Search{iface: i, handle: h, pending: fd, buffered: true}, nil
}

// Next returns the buffered record and fetches the following one.
// ok is false once exhausted; after Close it fails with ErrUseAfterClose.
func (s *Search) Next() (FindData, bool, error) {
	if s.closed {
		return FindData{}, false, ErrUseAfterClose
	}

	if !s.buffered {
		return FindData{}, false, nil
	}

	following, ok, err := s.iface.FindNextFile(s.handle)
	if err != nil {
		s.err = err
		return FindData{}, false, err
	}

	out := s.pending
	s.pending, s.buffered = following, ok
	return out, true, nil
}

// All yields remaining records. Iteration stops on the first error, which is
// then reported by Err.
func (s *Search) All() iter.Seq[FindData] {
	return func(yield func(FindData) bool) {
		for {
			fd, ok, err := s.Next()
			if err != nil {
				s.err = err
				return
			}

			if !ok || !yield(fd) {
				return
			}
		}
	}
}

// Err returns the first error met by Next or All.
func (s *Search) Err() error {
	return s.err
}

// Handle returns the low-level search handle.
func (s *Search) Handle() SearchHandle {
	return s.handle
}

// Close releases the search. Calling Close more than once is a no-op.
func (s *Search) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.buffered = false
	return s.iface.FindClose(s.handle)
}
