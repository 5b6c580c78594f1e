// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
)

// testFileTime is a valid FILETIME used by fixtures unless an entry overrides it.
var testFileTime = FileTime{Low: 0x5A6B7C8D, High: 0x01DA1234}

type pakEntry struct {
	fileTime FileTime
	name     string
	data     []byte
	noTime   bool
}

// entryTime returns the FILETIME written for e.
func (e pakEntry) entryTime() FileTime {
	if e.noTime {
		return e.fileTime
	}

	if e.fileTime.IsZero() {
		return testFileTime
	}

	return e.fileTime
}

// buildPlainPak builds archive bytes without XOR obfuscation.
// Names are written as raw bytes, so callers control the stored 8-bit encoding.
func buildPlainPak(t testing.TB, entries []pakEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	putUint32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}

	putUint32(magic)
	putUint32(formatVersion)

	for _, e := range entries {
		if len(e.name) > 0xFF {
			t.Fatalf("fixture name too long: %d bytes", len(e.name))
		}

		buf.WriteByte(0)
		buf.WriteByte(byte(len(e.name)))
		buf.WriteString(e.name)
		putUint32(uint32(len(e.data))) //nolint:gosec // fixture payloads are small

		ft := e.entryTime()
		putUint32(ft.Low)
		putUint32(ft.High)
	}

	buf.WriteByte(flagEnd)
	for _, e := range entries {
		buf.Write(e.data)
	}

	return buf.Bytes()
}

// buildPak builds archive bytes as stored on disk (XOR 0xF7 applied).
func buildPak(t testing.TB, entries []pakEntry) []byte {
	t.Helper()

	return xorBytes(buildPlainPak(t, entries))
}

// xorBytes returns a copy of data with the archive key applied.
func xorBytes(data []byte) []byte {
	out := make([]byte, len(data))
	xorCopy(out, data, xorKey)
	return out
}

// writePak stores an archive built from entries at name on fsys.
func writePak(t testing.TB, fsys afero.Fs, name string, entries []pakEntry) {
	t.Helper()

	if err := afero.WriteFile(fsys, name, buildPak(t, entries), 0o644); err != nil {
		t.Fatalf("write pak %s: %v", name, err)
	}
}

// newMemInterface returns an Interface over an in-memory filesystem whose
// disk fallback is rooted at /game.
func newMemInterface(t testing.TB) (*Interface, afero.Fs) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/game", 0o755); err != nil {
		t.Fatalf("mkdir /game: %v", err)
	}

	iface := NewWithOptions(Options{FS: fsys, DiskRoot: "/game"})
	t.Cleanup(func() { _ = iface.Close() })

	return iface, fsys
}

// mustMount mounts an archive built from entries under name.
func mustMount(t testing.TB, iface *Interface, name string, entries []pakEntry) {
	t.Helper()

	if err := iface.MountBytes(name, buildPak(t, entries)); err != nil {
		t.Fatalf("MountBytes %s: %v", name, err)
	}
}

// payload returns n bytes of deterministic content.
func payload(n int, seed byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = seed + byte(i%251)
	}

	return out
}
