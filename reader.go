// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"golang.org/x/text/encoding"
)

// tableReader walks the XOR-obfuscated archive header and file table.
type tableReader struct {
	// data is the raw archive as stored on disk.
	data []byte
	// off is the next unread byte.
	off int
	// key is the XOR key applied to every byte (0 disables decoding).
	key byte
}

// Parse parses a raw pak archive and builds its file index.
// The payload is not copied; the returned Index only describes data.
func Parse(data []byte) (*Index, error) {
	return ParseWithOptions(data, ParseOptions{})
}

// ParseWithOptions parses a raw pak archive using explicit decode options.
func ParseWithOptions(data []byte, opts ParseOptions) (*Index, error) {
	opts.applyDefaults()

	key := byte(xorKey)
	if opts.DisableXOR {
		key = 0
	}

	tr := &tableReader{data: data, key: key}
	if err := parseHeader(tr); err != nil {
		return nil, err
	}

	entries, err := parseRecords(tr, opts.NameEncoding)
	if err != nil {
		return nil, err
	}

	dataStart := tr.off
	if err := assignSequentialOffsets(entries, uint64(dataStart), uint64(len(data))); err != nil {
		return nil, err
	}

	return newIndex(entries, int64(len(data)), int64(dataStart), key)
}

// ListEntries reads a pak archive from the OS filesystem and returns its table in stored order.
func ListEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pak: %w", err)
	}

	idx, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return idx.Entries(), nil
}

// parseHeader validates magic and version.
func parseHeader(tr *tableReader) error {
	if len(tr.data) < headerSize {
		return fmt.Errorf("%w: short header (%d bytes)", ErrMalformedArchive, len(tr.data))
	}

	gotMagic, _ := tr.readUint32()
	if gotMagic != magic {
		return fmt.Errorf("%w: bad magic 0x%08X", ErrMalformedArchive, gotMagic)
	}

	version, _ := tr.readUint32()
	if version != formatVersion {
		return fmt.Errorf("%w: %w %d", ErrMalformedArchive, ErrUnsupportedVersion, version)
	}

	return nil
}

// parseRecords reads file table records until the end flag.
func parseRecords(tr *tableReader, enc encoding.Encoding) ([]Entry, error) {
	entries := make([]Entry, 0, estimateEntryCapacity(len(tr.data)-tr.off))
	decoder := enc.NewDecoder()

	for {
		flags, err := tr.readByte()
		if err != nil {
			return nil, fmt.Errorf("%w: file table truncated before end record", ErrMalformedArchive)
		}

		if flags&flagEnd != 0 {
			return entries, nil
		}

		nameLen, err := tr.readByte()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: truncated name length", ErrMalformedArchive, len(entries))
		}

		if nameLen == 0 {
			return nil, fmt.Errorf("%w: record %d: empty name", ErrMalformedArchive, len(entries))
		}

		rawName, err := tr.readBytes(int(nameLen))
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: truncated name", ErrMalformedArchive, len(entries))
		}

		if bytes.IndexByte(rawName, 0) >= 0 {
			return nil, fmt.Errorf("%w: record %d: name contains NUL", ErrMalformedArchive, len(entries))
		}

		name, err := decoder.Bytes(rawName)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: decode name: %w", ErrMalformedArchive, len(entries), err)
		}

		size, err := tr.readUint32()
		if err != nil {
			return nil, fmt.Errorf("%w: record %s: truncated size", ErrMalformedArchive, name)
		}

		low, errLow := tr.readUint32()
		high, errHigh := tr.readUint32()
		if errLow != nil || errHigh != nil {
			return nil, fmt.Errorf("%w: record %s: truncated file time", ErrMalformedArchive, name)
		}

		entries = append(entries, Entry{
			Path:     string(name),
			Size:     uint64(size),
			FileTime: FileTime{Low: low, High: high},
			Flags:    flags,
		})
	}
}

// estimateEntryCapacity returns a conservative initial capacity for parsed entry metadata.
func estimateEntryCapacity(remainingBytes int) int {
	const (
		minCap = 16
		maxCap = 8192
		// remainingBytes includes payload region, so keep estimate intentionally conservative.
		avgEntryBytes = 1024
	)

	estimated := remainingBytes / avgEntryBytes
	if estimated < minCap {
		return minCap
	}
	if estimated > maxCap {
		return maxCap
	}

	return estimated
}

// assignSequentialOffsets derives payload offsets from dataStart and previous entry sizes.
func assignSequentialOffsets(entries []Entry, dataStart uint64, totalSize uint64) error {
	current := dataStart
	for i := range entries {
		entries[i].Offset = current

		if entries[i].Size > math.MaxUint64-current {
			return fmt.Errorf("%w: entry %s size overflows", ErrMalformedArchive, entries[i].Path)
		}

		end := current + entries[i].Size
		if end > totalSize {
			return fmt.Errorf("%w: entry %s payload [%d, %d) out of archive bounds %d",
				ErrMalformedArchive, entries[i].Path, current, end, totalSize)
		}

		current = end
	}

	return nil
}

// readByte reads one decoded byte.
func (tr *tableReader) readByte() (byte, error) {
	if tr.off >= len(tr.data) {
		return 0, ErrMalformedArchive
	}

	b := tr.data[tr.off] ^ tr.key
	tr.off++
	return b, nil
}

// readBytes reads n decoded bytes into a fresh slice.
func (tr *tableReader) readBytes(n int) ([]byte, error) {
	if n < 0 || len(tr.data)-tr.off < n {
		return nil, ErrMalformedArchive
	}

	out := make([]byte, n)
	xorCopy(out, tr.data[tr.off:tr.off+n], tr.key)
	tr.off += n
	return out, nil
}

// readUint32 reads one decoded little-endian u32.
func (tr *tableReader) readUint32() (uint32, error) {
	var buf [4]byte
	if len(tr.data)-tr.off < len(buf) {
		return 0, ErrMalformedArchive
	}

	xorCopy(buf[:], tr.data[tr.off:tr.off+len(buf)], tr.key)
	tr.off += len(buf)
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// xorCopy copies src to dst applying key to every byte.
func xorCopy(dst []byte, src []byte, key byte) int {
	n := copy(dst, src)
	if key == 0 {
		return n
	}

	for i := range n {
		dst[i] ^= key
	}

	return n
}
