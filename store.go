// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

// Store is the read-only byte source behind an open file.
type Store interface {
	io.ReaderAt
	// Size returns total store size in bytes.
	Size() int64
}

// archiveStore is a borrowed view of one entry payload inside a mount buffer.
// The mount owns data; views never copy or mutate it.
type archiveStore struct {
	data []byte
	key  byte
}

// newArchiveStore binds a view to entry range inside raw archive bytes.
func newArchiveStore(raw []byte, entry Entry, key byte) *archiveStore {
	return &archiveStore{
		data: raw[entry.Offset : entry.Offset+entry.Size],
		key:  key,
	}
}

// ReadAt implements io.ReaderAt. Reads at or past end report io.EOF.
func (s *archiveStore) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrInvalidInput, off)
	}

	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}

	n := xorCopy(p, s.data[off:], s.key)
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Size returns entry payload size.
func (s *archiveStore) Size() int64 {
	return int64(len(s.data))
}

// diskStore reads a host file through afero.
type diskStore struct {
	file afero.File
	size int64
}

// openDiskStore opens name on fsys and captures its size.
func openDiskStore(fsys afero.Fs, name string) (*diskStore, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, mapDiskError(name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}

	return &diskStore{file: f, size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (s *diskStore) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

// Size returns file size captured at open time.
func (s *diskStore) Size() int64 {
	return s.size
}

// Close releases the host descriptor.
func (s *diskStore) Close() error {
	return s.file.Close()
}

// mapDiskError maps missing host files to ErrNotFound while keeping the cause.
// Permission errors keep fs.ErrPermission in the chain.
func mapDiskError(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}

	return fmt.Errorf("open %s: %w", name, err)
}
