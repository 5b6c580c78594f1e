// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"fmt"
	"io/fs"

	"golang.org/x/text/encoding/charmap"
)

// maxPath is the Win32 MAX_PATH bound of the cFileName field, including NUL.
const maxPath = 260

// FindData is a point-in-time copy of one WIN32_FIND_DATA record.
type FindData struct {
	// FileName is the case-preserved entry name within the searched directory.
	FileName string `json:"file_name" yaml:"file_name"`
	// AlternateFileName is the 8.3 short name; empty for archive entries.
	AlternateFileName string `json:"alternate_file_name,omitempty" yaml:"alternate_file_name,omitempty"`
	// CreationTime is entry creation time.
	CreationTime FileTime `json:"creation_time,omitzero" yaml:"creation_time,omitempty"`
	// LastAccessTime is entry last access time.
	LastAccessTime FileTime `json:"last_access_time,omitzero" yaml:"last_access_time,omitempty"`
	// LastWriteTime is entry last write time.
	LastWriteTime FileTime `json:"last_write_time,omitzero" yaml:"last_write_time,omitempty"`
	// FileAttributes is the Win32 attribute bitmask.
	FileAttributes uint32 `json:"file_attributes" yaml:"file_attributes"`
	// FileSizeHigh is the upper 32 bits of size.
	FileSizeHigh uint32 `json:"file_size_high" yaml:"file_size_high"`
	// FileSizeLow is the lower 32 bits of size.
	FileSizeLow uint32 `json:"file_size_low" yaml:"file_size_low"`
}

// NewFindData builds a record with size split into legacy halves.
func NewFindData(name string, size uint64, attributes uint32) FindData {
	return FindData{
		FileName:       name,
		FileAttributes: attributes,
		FileSizeHigh:   uint32(size >> 32), //nolint:gosec // intentional split
		FileSizeLow:    uint32(size),       //nolint:gosec // intentional split
	}
}

// Size reconstructs the 64-bit size from high and low halves.
func (fd FindData) Size() uint64 {
	return uint64(fd.FileSizeHigh)<<32 | uint64(fd.FileSizeLow)
}

// IsDir reports whether FILE_ATTRIBUTE_DIRECTORY is set.
func (fd FindData) IsDir() bool {
	return fd.FileAttributes&FileAttributeDirectory != 0
}

// IsDotEntry reports whether the record is the "." or ".." pseudo-entry
// produced by host directory enumeration. They are kept in search results
// for compatibility; callers filter them when needed.
func (fd FindData) IsDotEntry() bool {
	return fd.FileName == "." || fd.FileName == ".."
}

// LegacyFileName encodes FileName to the Windows-1252 bytes stored in cFileName.
func (fd FindData) LegacyFileName() ([]byte, error) {
	out, err := charmap.Windows1252.NewEncoder().Bytes([]byte(fd.FileName))
	if err != nil {
		return nil, fmt.Errorf("%w: encode %q: %w", ErrInvalidInput, fd.FileName, err)
	}

	if len(out) >= maxPath {
		return nil, fmt.Errorf("%w: file name longer than %d bytes", ErrInvalidInput, maxPath-1)
	}

	return out, nil
}

// archiveFileData builds a file record for an archive entry.
func archiveFileData(name string, entry Entry) FindData {
	fd := NewFindData(name, entry.Size, FileAttributeNormal)
	fd.CreationTime = entry.FileTime
	fd.LastAccessTime = entry.FileTime
	fd.LastWriteTime = entry.FileTime
	return fd
}

// archiveDirData builds a synthesized directory record for an archive path prefix.
func archiveDirData(name string, ft FileTime) FindData {
	fd := NewFindData(name, 0, FileAttributeDirectory)
	fd.CreationTime = ft
	fd.LastAccessTime = ft
	fd.LastWriteTime = ft
	return fd
}

// diskFindData builds a record from host file info under a display name.
func diskFindData(name string, info fs.FileInfo) FindData {
	attrs := FileAttributeArchive
	size := uint64(0)
	if info.IsDir() {
		attrs = FileAttributeDirectory
	} else if info.Size() > 0 {
		size = uint64(info.Size())
	}

	if info.Mode().Perm()&0o222 == 0 {
		attrs |= FileAttributeReadOnly
	}

	ft := NewFileTime(info.ModTime())
	fd := NewFindData(name, size, attrs)
	fd.CreationTime = ft
	fd.LastAccessTime = ft
	fd.LastWriteTime = ft
	return fd
}
