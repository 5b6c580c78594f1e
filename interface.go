// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Interface unifies mounted pak archives and the host filesystem behind one
// read-only namespace. Each Interface is self-contained; several may coexist.
//
// Lookups try mounts in registration order (the first archive added wins)
// and fall back to the host filesystem only when no mount has the path.
type Interface struct {
	// opts holds options with defaults applied.
	opts Options
	// loader reads archive files for Mount.
	loader afero.Fs
	// disk is the read-only fallback filesystem.
	disk afero.Fs
	// mounts are kept in priority order.
	mounts []*mount
	// files owns open file streams.
	files table[*stream]
	// searches owns active directory searches.
	searches table[*search]
	// mu guards mounts, tables and closed state.
	mu sync.Mutex
	// closed reports whether Close succeeded.
	closed bool
}

// New creates an Interface over the OS filesystem.
func New() *Interface {
	return NewWithOptions(Options{})
}

// NewWithOptions creates an Interface using explicit options.
func NewWithOptions(opts Options) *Interface {
	opts.applyDefaults()

	disk := opts.FS
	if opts.DiskRoot != "" {
		disk = afero.NewBasePathFs(disk, opts.DiskRoot)
	}

	return &Interface{
		opts:   opts,
		loader: opts.FS,
		disk:   afero.NewReadOnlyFs(disk),
	}
}

// log returns configured logger.
func (i *Interface) log() *slog.Logger {
	return i.opts.Logger
}

// Close destroys the interface and releases all mounts.
// It fails with ErrHandlesOutstanding while files or searches are still open;
// a second call is a no-op.
func (i *Interface) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}

	if files, searches := i.files.count(), i.searches.count(); files+searches > 0 {
		return fmt.Errorf("%w: %d files, %d searches", ErrHandlesOutstanding, files, searches)
	}

	i.closed = true
	i.mounts = nil
	i.log().Debug("pak interface closed")
	return nil
}

// FOpen resolves name and returns a handle for the opened stream.
// mode accepts "r" with optional "b" or "t"; write and append modes fail with ErrUnsupportedMode.
func (i *Interface) FOpen(name string, mode string) (Handle, error) {
	if err := validateInput("file name", name); err != nil {
		return Handle{}, err
	}

	if err := parseMode(mode); err != nil {
		return Handle{}, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return Handle{}, ErrUseAfterClose
	}

	s, err := i.resolve(name)
	if err != nil {
		return Handle{}, err
	}

	index, gen := i.files.insert(s)
	h := Handle{index: index, gen: gen}
	i.log().Debug("file opened", "name", name, "source", s.source, "handle", h.String())
	return h, nil
}

// FClose closes an open handle. It returns StatusOK on success and for
// handles that were already closed, StatusEOF for tokens never issued or
// when the host descriptor fails to close.
func (i *Interface) FClose(h Handle) int {
	i.mu.Lock()
	s, state := i.files.remove(h.index, h.gen)
	i.mu.Unlock()

	switch state {
	case slotUnknown:
		return StatusEOF
	case slotClosed:
		return StatusOK
	}

	if err := s.close(); err != nil {
		i.log().Warn("close file", "name", s.name, "error", err)
		return StatusEOF
	}

	return StatusOK
}

// FRead reads into p from the handle position. It returns (0, nil) at end of
// stream; use FEOF to tell end of stream from an empty buffer.
func (i *Interface) FRead(h Handle, p []byte) (int, error) {
	s, err := i.lookupFile(h)
	if err != nil {
		return 0, err
	}

	return s.read(p)
}

// FSeek moves the handle position like fseek and returns the new offset.
func (i *Interface) FSeek(h Handle, offset int64, whence int) (int64, error) {
	s, err := i.lookupFile(h)
	if err != nil {
		return 0, err
	}

	return s.seek(offset, whence)
}

// FTell returns the handle position.
func (i *Interface) FTell(h Handle) (int64, error) {
	s, err := i.lookupFile(h)
	if err != nil {
		return 0, err
	}

	return s.pos, nil
}

// FEOF reports whether a previous read on the handle reached end of stream.
func (i *Interface) FEOF(h Handle) (bool, error) {
	s, err := i.lookupFile(h)
	if err != nil {
		return false, err
	}

	return s.eof, nil
}

// lookupFile resolves a live file handle.
func (i *Interface) lookupFile(h Handle) (*stream, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	s, state := i.files.get(h.index, h.gen)
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

// resolve finds name in mounts (registration order) then on disk.
// Caller must hold i.mu.
func (i *Interface) resolve(name string) (*stream, error) {
	key := lookupKey(name)
	for _, m := range i.mounts {
		pos, ok := m.index.lookup[key]
		if !ok {
			continue
		}

		entry := m.index.entries[pos]
		if !entry.FileTime.Valid() && !i.opts.AllowMissingFileTime {
			i.log().Debug("skip archive entry without file time", "mount", m.name, "path", entry.Path)
			continue
		}

		return &stream{
			store:  newArchiveStore(m.data, entry, m.index.key),
			name:   entry.Path,
			source: m.name,
		}, nil
	}

	p := diskPath(name)
	ds, err := openDiskStore(i.disk, p)
	if err != nil {
		return nil, err
	}

	return &stream{store: ds, closer: ds, name: p}, nil
}

// parseMode accepts read-only fopen modes.
func parseMode(mode string) error {
	if err := validateInput("mode", mode); err != nil {
		return err
	}

	if mode[0] != 'r' {
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}

	for _, r := range mode[1:] {
		if !strings.ContainsRune("bt", r) {
			return fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
		}
	}

	return nil
}
