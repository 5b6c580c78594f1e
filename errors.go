// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import "errors"

// Sentinel errors for pak operations. Use errors.Is in callers.
var (
	// ErrMalformedArchive means the archive header or file table is structurally invalid.
	ErrMalformedArchive = errors.New("malformed pak archive")
	// ErrUnsupportedVersion means the archive header carries an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported pak version")
	// ErrNotFound means the path resolves against no mount and no disk entry.
	ErrNotFound = errors.New("file not found")
	// ErrUnsupportedMode means a write or unknown access mode was requested.
	ErrUnsupportedMode = errors.New("unsupported access mode")
	// ErrReadFailure means the backing store failed while not at end of stream.
	ErrReadFailure = errors.New("read failure")
	// ErrUseAfterClose means the handle, search or interface is already closed.
	ErrUseAfterClose = errors.New("use after close")
	// ErrInvalidInput means a path, pattern or mode cannot form a valid platform string.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidHandle means the handle token was never issued by this interface.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrHandlesOutstanding means the interface still owns open files or searches.
	ErrHandlesOutstanding = errors.New("interface has outstanding handles")
	// ErrInvalidRules means one or more path filter rules are invalid.
	ErrInvalidRules = errors.New("invalid path rules")
	// ErrInvalidExtractPath means archive entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrExtractPathOutsideRoot means resolved extraction path escapes destination root.
	ErrExtractPathOutsideRoot = errors.New("extract path escapes destination root")
)
