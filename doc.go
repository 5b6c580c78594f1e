// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

/*
Package pak provides read-only access to PopCap-style PAK archives and a
unified file layer that opens logical paths from mounted archives or the
host filesystem, with FindFirstFile/FindNextFile style directory search.

Archive layout (every byte XOR 0xF7):
  - u32 magic 0xBAC04AC0, u32 version 0;
  - file table records: flags byte, name length byte, Windows-1252 name,
    u32 size, u64 FILETIME; a record with flag 0x80 ends the table;
  - payloads concatenated in table order right after the table.

Paths are matched case-insensitively and "/" equals "\".

# Parsing

Parse an archive held in memory without mounting it:

	idx, err := pak.Parse(data)
	if err != nil {
	    return err // wraps pak.ErrMalformedArchive
	}
	for _, e := range idx.Entries() {
	    _ = e.Path
	}

# Mounting and opening

Archives are tried in the order they were added (the first one wins), then
the host filesystem:

	iface := pak.New()
	defer func() { _ = iface.Close() }()

	if !iface.AddPakFile("main.pak") {
	    // optional archive missing or malformed; continue with disk only
	}

	f, err := iface.OpenFile("images/logo.png", "rb")
	if err != nil {
	    return err
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)

Use options to confine disk lookups or to log mount failures:

	iface := pak.NewWithOptions(pak.Options{
	    DiskRoot: "/opt/game",
	    Logger:   slog.Default(),
	})

The C-style handle API (FOpen, FRead, FSeek, FTell, FEOF, FClose) is backed
by a generation-checked handle table; stale handles report ErrUseAfterClose
instead of touching reused state.

# Searching

	s, err := iface.FindFile("images/*")
	if err != nil {
	    return err // ErrNotFound when nothing matches
	}
	defer func() { _ = s.Close() }()
	for fd := range s.All() {
	    if fd.IsDotEntry() {
	        continue
	    }
	    _ = fd.FileName
	}

Search runs through archive entries first and then the host directory. Host
enumeration keeps the "." and ".." records, like the Win32 API it mirrors.

# Listing and extracting

	paths := iface.ListAllFilePaths()

	err := iface.Extract(ctx, "out/", pak.ExtractOptions{
	    MaxWorkers: 4,
	    Rules: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "images/**"},
	    },
	})

Records without FILETIME are hidden from listing and opening unless
Options.AllowMissingFileTime is set.

Close fails with ErrHandlesOutstanding while files or searches are open.
*/
package pak
