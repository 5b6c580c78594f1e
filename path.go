// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts an archive/internal path to normalized slash-separated form.
// It accepts both "/" and "\", removes leading "./" and "/", and cleans "." and ".." segments.
func NormalizePath(raw string) string {
	raw = normalizeSeparators(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// normalizeSeparators rewrites "\" to "/" and drops a leading "./".
func normalizeSeparators(p string) string {
	p = strings.ReplaceAll(p, `\`, `/`)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}

	return p
}

// lookupKey returns the case-folded normalized key used by archive indices.
func lookupKey(name string) string {
	return strings.ToUpper(NormalizePath(name))
}

// diskPath converts a logical path to the form passed to the host filesystem.
// Unlike NormalizePath it keeps leading ".." so relative lookups behave like the host.
func diskPath(name string) string {
	p := path.Clean(normalizeSeparators(name))
	if p == "" {
		return "."
	}

	return p
}

// splitDirBase splits a normalized path into parent directory and final segment.
func splitDirBase(p string) (string, string) {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return "", p
	}

	return p[:idx], p[idx+1:]
}

// validateInput rejects empty strings and strings with embedded NUL.
func validateInput(kind string, value string) error {
	if value == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidInput, kind)
	}

	if strings.IndexByte(value, 0) >= 0 {
		return fmt.Errorf("%w: %s contains NUL: %q", ErrInvalidInput, kind, value)
	}

	return nil
}
