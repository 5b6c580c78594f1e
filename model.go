// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/spf13/afero"
	"github.com/woozymasta/pathrules"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Internal binary layout and format limits.
const (
	headerSize    = 8          // magic + version
	magic         = 0xBAC04AC0 // first u32 after XOR decoding
	formatVersion = 0          // only known version
	xorKey        = 0xF7       // whole-file obfuscation key
	flagEnd       = 0x80       // record flag terminating the file table
)

// Win32 file attribute bits reported in FindData.
const (
	FileAttributeReadOnly  uint32 = 0x00000001
	FileAttributeDirectory uint32 = 0x00000010
	FileAttributeArchive   uint32 = 0x00000020
	FileAttributeNormal    uint32 = 0x00000080
)

// Status codes returned by FClose, mirroring the C runtime convention.
const (
	StatusOK  = 0
	StatusEOF = -1
)

// filetimeUnixEpoch is the FILETIME value of 1970-01-01T00:00:00Z.
const filetimeUnixEpoch = 116444736000000000

// FileTime is a Win32 FILETIME: 100ns intervals since 1601-01-01 UTC split in two halves.
type FileTime struct {
	Low  uint32 `json:"low" yaml:"low"`
	High uint32 `json:"high" yaml:"high"`
}

// NewFileTime converts t to FILETIME representation.
func NewFileTime(t time.Time) FileTime {
	v := uint64(t.UnixNano()/100) + filetimeUnixEpoch //nolint:gosec // times before 1601 are not representable
	return FileTime{Low: uint32(v), High: uint32(v >> 32)} //nolint:gosec // intentional split
}

// Uint64 joins both halves into one 64-bit value.
func (ft FileTime) Uint64() uint64 {
	return uint64(ft.High)<<32 | uint64(ft.Low)
}

// IsZero reports whether both halves are zero.
func (ft FileTime) IsZero() bool {
	return ft.Low == 0 && ft.High == 0
}

// Valid reports whether both halves are non-zero.
// Records without a full timestamp are treated as unsafe by the legacy loader.
func (ft FileTime) Valid() bool {
	return ft.Low != 0 && ft.High != 0
}

// Time converts FILETIME to time.Time in UTC.
func (ft FileTime) Time() time.Time {
	v := ft.Uint64()
	if v < filetimeUnixEpoch {
		return time.Time{}
	}

	return time.Unix(0, int64((v-filetimeUnixEpoch)*100)).UTC() //nolint:gosec // bounded by FILETIME range
}

// Entry describes a single parsed pak file table record.
type Entry struct {
	// Path is the entry path as stored in archive table, decoded to UTF-8.
	Path string `json:"path" yaml:"path"`
	// Offset is absolute byte offset of entry payload inside the archive.
	Offset uint64 `json:"offset" yaml:"offset"`
	// Size is payload size in bytes.
	Size uint64 `json:"size" yaml:"size"`
	// FileTime is the last write time stored in the record.
	FileTime FileTime `json:"file_time,omitzero" yaml:"file_time,omitempty"`
	// Flags is the raw record flags byte.
	Flags uint8 `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// ParseOptions configures archive table decoding.
type ParseOptions struct {
	// NameEncoding decodes stored 8-bit names; nil means Windows-1252.
	NameEncoding encoding.Encoding `json:"-" yaml:"-"`
	// DisableXOR reads archives that were stored without the 0xF7 obfuscation.
	DisableXOR bool `json:"disable_xor,omitempty" yaml:"disable_xor,omitempty"`
}

// Options configures a pak Interface.
type Options struct {
	// FS is the host filesystem used for archive loading and disk fallback.
	// Default is the OS filesystem.
	FS afero.Fs `json:"-" yaml:"-"`
	// Logger receives debug and warning events; nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// DiskRoot confines disk fallback lookups to one directory when set.
	DiskRoot string `json:"disk_root,omitempty" yaml:"disk_root,omitempty"`
	// Parse configures archive decoding for every mount.
	Parse ParseOptions `json:"parse,omitzero" yaml:"parse,omitempty"`
	// AllowMissingFileTime makes archive records without FILETIME resolvable and listable.
	AllowMissingFileTime bool `json:"allow_missing_file_time,omitempty" yaml:"allow_missing_file_time,omitempty"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written.
	OnEntryDone func(path string, written int64, outputPath string) `json:"-" yaml:"-"`
	// FS is the output filesystem; nil means the OS filesystem.
	FS afero.Fs `json:"-" yaml:"-"`
	// Rules limits extraction to paths included by ordered path rules; empty means all.
	Rules []pathrules.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	// MatcherOptions control Rules matching; zero value matches case-insensitively and excludes by default.
	MatcherOptions pathrules.MatcherOptions `json:"matcher_options,omitzero" yaml:"matcher_options,omitempty"`
	// MaxWorkers is number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
	// RawNames disables default path sanitization during extract.
	RawNames bool `json:"raw_names,omitempty" yaml:"raw_names,omitempty"`
}

// applyDefaults fills zero-valued parse options with defaults.
func (opts *ParseOptions) applyDefaults() {
	if opts.NameEncoding == nil {
		opts.NameEncoding = charmap.Windows1252
	}
}

// applyDefaults fills zero-valued interface options with defaults.
func (opts *Options) applyDefaults() {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	opts.Parse.applyDefaults()
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}

	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
}
