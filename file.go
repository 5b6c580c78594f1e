// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"errors"
	"fmt"
	"io"
)

// stream is the cursor state stored in the handle table for one open file.
// Each open owns its own position; streams never share it.
type stream struct {
	// store is the resolved backing store.
	store Store
	// closer is set for stores owning a host descriptor.
	closer io.Closer
	// name is the resolved path used in errors.
	name string
	// source is the mount name or empty for disk.
	source string
	// pos is the next read offset.
	pos int64
	// eof is set by a read that reached end of store and cleared by seek.
	eof bool
}

// read reads into p from current position.
// It returns (0, nil) at end of stream; EOF is reported by the eof flag.
func (s *stream) read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if s.pos >= s.store.Size() {
		s.eof = true
		return 0, nil
	}

	n, err := s.store.ReadAt(p, s.pos)
	s.pos += int64(n)
	if err == nil {
		return n, nil
	}

	if errors.Is(err, io.EOF) {
		s.eof = true
		return n, nil
	}

	return n, fmt.Errorf("%w: %s at offset %d: %w", ErrReadFailure, s.name, s.pos, err)
}

// seek moves current position like fseek and clears the eof flag.
func (s *stream) seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = s.store.Size()
	default:
		return s.pos, fmt.Errorf("%w: bad whence %d", ErrInvalidInput, whence)
	}

	next := base + offset
	if next < 0 {
		return s.pos, fmt.Errorf("%w: negative position %d", ErrInvalidInput, next)
	}

	s.pos = next
	s.eof = false
	return next, nil
}

// close releases the host descriptor for disk streams.
func (s *stream) close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}

// File is an open read cursor returned by OpenFile. It implements io.ReadSeekCloser.
// A File is not safe for concurrent use; distinct Files are independent.
type File struct {
	iface  *Interface
	name   string
	source string
	handle Handle
	size   int64
	closed bool
}

// OpenFile opens name for reading. Mounted archives are searched in
// registration order before the host filesystem.
func (i *Interface) OpenFile(name string, mode string) (*File, error) {
	h, err := i.FOpen(name, mode)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	s, _ := i.files.get(h.index, h.gen)
	i.mu.Unlock()

	return &File{
		iface:  i,
		handle: h,
		name:   s.name,
		source: s.source,
		size:   s.store.Size(),
	}, nil
}

// ReadFile reads full content of name.
func (i *Interface) ReadFile(name string) ([]byte, error) {
	f, err := i.OpenFile(name, "rb")
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make([]byte, 0, f.Size())
	buf := make([]byte, readFileChunkSize)
	for {
		n, err := f.Read(buf)
		data = append(data, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return data, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

// readFileChunkSize is the copy buffer used by ReadFile.
const readFileChunkSize = 32 * 1024

// Read implements io.Reader. It returns io.EOF at genuine end of stream and
// an error wrapping ErrReadFailure when the store fails before the end.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, ErrUseAfterClose
	}

	n, err := f.iface.FRead(f.handle, p)
	if err != nil {
		return n, err
	}

	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}

	return n, nil
}

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, ErrUseAfterClose
	}

	return f.iface.FSeek(f.handle, offset, whence)
}

// Position returns current read offset.
func (f *File) Position() (int64, error) {
	if f.closed {
		return 0, ErrUseAfterClose
	}

	return f.iface.FTell(f.handle)
}

// IsEOF reports whether a previous read reached end of stream.
func (f *File) IsEOF() (bool, error) {
	if f.closed {
		return false, ErrUseAfterClose
	}

	return f.iface.FEOF(f.handle)
}

// Size returns total stream size captured at open time.
func (f *File) Size() int64 {
	return f.size
}

// Name returns the resolved path (archive path as stored, or disk path).
func (f *File) Name() string {
	return f.name
}

// Source returns the mount name the file was resolved from, or "" for disk.
func (f *File) Source() string {
	return f.source
}

// Handle returns the low-level handle token of this file.
func (f *File) Handle() Handle {
	return f.handle
}

// Close releases the file. Calling Close more than once is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}

	f.closed = true
	if status := f.iface.FClose(f.handle); status != StatusOK {
		return fmt.Errorf("close %s: status %d", f.name, status)
	}

	return nil
}
