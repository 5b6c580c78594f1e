// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every read before its end.
type failingStore struct {
	size int64
}

func (s failingStore) ReadAt([]byte, int64) (int, error) {
	return 0, errors.New("device gone")
}

func (s failingStore) Size() int64 {
	return s.size
}

func TestFReadEOFBoundary(t *testing.T) {
	t.Parallel()

	iface, _ := newMemInterface(t)
	mustMount(t, iface, "a.pak", []pakEntry{{name: "ten.bin", data: payload(10, 3)}})

	h, err := iface.FOpen("ten.bin", "rb")
	require.NoError(t, err)
	defer iface.FClose(h)

	buf := make([]byte, 10)
	n, err := iface.FRead(h, buf)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, payload(10, 3), buf)

	eof, err := iface.FEOF(h)
	require.NoError(t, err)
	assert.False(t, eof, "exact read must not set EOF")

	n, err = iface.FRead(h, buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	eof, err = iface.FEOF(h)
	require.NoError(t, err)
	assert.True(t, eof)
}

func TestFReadShortReadSetsEOF(t *testing.T) {
	t.Parallel()

	iface, _ := newMemInterface(t)
	mustMount(t, iface, "a.pak", []pakEntry{{name: "four.bin", data: []byte("abcd")}})

	h, err := iface.FOpen("four.bin", "r")
	require.NoError(t, err)
	defer iface.FClose(h)

	buf := make([]byte, 16)
	n, err := iface.FRead(h, buf)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(buf[:n]))

	eof, err := iface.FEOF(h)
	require.NoError(t, err)
	assert.True(t, eof)

	pos, err := iface.FTell(h)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)
}

func TestFSeek(t *testing.T) {
	t.Parallel()

	iface, _ := newMemInterface(t)
	mustMount(t, iface, "a.pak", []pakEntry{{name: "abc.txt", data: []byte("0123456789")}})

	h, err := iface.FOpen("abc.txt", "rb")
	require.NoError(t, err)
	defer iface.FClose(h)

	buf := make([]byte, 32)
	_, err = iface.FRead(h, buf)
	require.NoError(t, err)

	eof, _ := iface.FEOF(h)
	require.True(t, eof)

	pos, err := iface.FSeek(h, -3, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)

	eof, _ = iface.FEOF(h)
	assert.False(t, eof, "seek must clear EOF")

	n, err := iface.FRead(h, buf[:3])
	require.NoError(t, err)
	assert.Equal(t, "789", string(buf[:n]))

	pos, err = iface.FSeek(h, -8, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)

	pos, err = iface.FSeek(h, 100, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos)

	n, err = iface.FRead(h, buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = iface.FSeek(h, -1, io.SeekStart)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = iface.FSeek(h, 0, 42)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStreamReadFailure(t *testing.T) {
	t.Parallel()

	s := &stream{store: failingStore{size: 10}, name: "broken.bin"}

	_, err := s.read(make([]byte, 4))
	require.ErrorIs(t, err, ErrReadFailure)
	assert.False(t, s.eof, "failure must not look like EOF")
}

func TestFileHandleUseAfterClose(t *testing.T) {
	t.Parallel()

	iface, _ := newMemInterface(t)
	mustMount(t, iface, "a.pak", []pakEntry{{name: "a.txt", data: []byte("a")}})

	h, err := iface.FOpen("a.txt", "rb")
	require.NoError(t, err)
	assert.False(t, h.IsZero())

	assert.Equal(t, StatusOK, iface.FClose(h))
	assert.Equal(t, StatusOK, iface.FClose(h), "double close is a no-op")

	_, err = iface.FRead(h, make([]byte, 1))
	require.ErrorIs(t, err, ErrUseAfterClose)

	_, err = iface.FTell(h)
	require.ErrorIs(t, err, ErrUseAfterClose)

	_, err = iface.FEOF(h)
	require.ErrorIs(t, err, ErrUseAfterClose)

	// A reused slot must not be reachable through the stale handle.
	h2, err := iface.FOpen("a.txt", "rb")
	require.NoError(t, err)
	defer iface.FClose(h2)

	_, err = iface.FSeek(h, 0, io.SeekStart)
	require.ErrorIs(t, err, ErrUseAfterClose)

	assert.Equal(t, StatusEOF, iface.FClose(Handle{}))

	_, err = iface.FRead(Handle{index: 99, gen: 1}, make([]byte, 1))
	require.ErrorIs(t, err, ErrInvalidHandle)
}

func TestIndependentCursors(t *testing.T) {
	t.Parallel()

	iface, _ := newMemInterface(t)
	mustMount(t, iface, "a.pak", []pakEntry{{name: "abc.txt", data: []byte("abcdef")}})

	h1, err := iface.FOpen("abc.txt", "rb")
	require.NoError(t, err)
	defer iface.FClose(h1)

	h2, err := iface.FOpen("abc.txt", "rb")
	require.NoError(t, err)
	defer iface.FClose(h2)

	buf := make([]byte, 4)
	_, err = iface.FRead(h1, buf)
	require.NoError(t, err)

	n, err := iface.FRead(h2, buf[:2])
	require.NoError(t, err)
	assert.Equal(t, "ab", string(buf[:n]))

	p1, _ := iface.FTell(h1)
	p2, _ := iface.FTell(h2)
	assert.Equal(t, int64(4), p1)
	assert.Equal(t, int64(2), p2)
}

func TestFile(t *testing.T) {
	t.Parallel()

	iface, _ := newMemInterface(t)
	content := payload(70_000, 9)
	mustMount(t, iface, "big.pak", []pakEntry{{name: `music\theme.ogg`, data: content}})

	f, err := iface.OpenFile("MUSIC/theme.OGG", "rb")
	require.NoError(t, err)

	assert.Equal(t, `music\theme.ogg`, f.Name())
	assert.Equal(t, "big.pak", f.Source())
	assert.Equal(t, int64(len(content)), f.Size())

	var rsc io.ReadSeekCloser = f
	got, err := io.ReadAll(rsc)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	n, err := f.Read(make([]byte, 8))
	assert.Zero(t, n)
	require.ErrorIs(t, err, io.EOF)

	eof, err := f.IsEOF()
	require.NoError(t, err)
	assert.True(t, eof)

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)

	pos, err := f.Position()
	require.NoError(t, err)
	assert.Zero(t, pos)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = f.Read(make([]byte, 1))
	require.ErrorIs(t, err, ErrUseAfterClose)

	_, err = f.Seek(0, io.SeekStart)
	require.ErrorIs(t, err, ErrUseAfterClose)
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	iface, _ := newMemInterface(t)
	content := payload(100_000, 5)
	mustMount(t, iface, "a.pak", []pakEntry{
		{name: "empty.txt"},
		{name: "large.bin", data: content},
	})

	got, err := iface.ReadFile("large.bin")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	got, err = iface.ReadFile("empty.txt")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = iface.ReadFile("missing.bin")
	require.ErrorIs(t, err, ErrNotFound)
}
