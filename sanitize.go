// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"fmt"
	"hash/fnv"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// maxSanitizedSegmentLen caps one output path segment in bytes.
	maxSanitizedSegmentLen = 240
)

var (
	// reservedDOSNames contains case-insensitive reserved DOS/Windows/OS2 device names.
	reservedDOSNames = map[string]struct{}{
		"$":        {},
		"$addstor": {},
		"$idle$":   {},
		"386max$$": {},
		"4dosstak": {},
		"82164a":   {},
		"aux":      {},
		"cloak$$$": {},
		"clock":    {},
		"clock$":   {},
		"com1":     {},
		"com2":     {},
		"com3":     {},
		"com4":     {},
		"com5":     {},
		"com6":     {},
		"com7":     {},
		"com8":     {},
		"com9":     {},
		"con":      {},
		"config$":  {},
		"dblssys$": {},
		"dpmixxx0": {},
		"dpmsxxx0": {},
		"emm$$$$$": {},
		"emmqxxx0": {},
		"emmxxxq0": {},
		"emmxxxx0": {},
		"hmaldsys": {},
		"ifs$hlp$": {},
		"kbd$":     {},
		"keybd$":   {},
		"lpt1":     {},
		"lpt2":     {},
		"lpt3":     {},
		"lpt4":     {},
		"lpt5":     {},
		"lpt6":     {},
		"lpt7":     {},
		"lpt8":     {},
		"lpt9":     {},
		"lst":      {},
		"mouse$":   {},
		"ndosstak": {},
		"nul":      {},
		"pc$mouse": {},
		"plt":      {},
		"pointer$": {},
		"prn":      {},
		"protman$": {},
		"qdpmi$$$": {},
		"qemm386$": {},
		"qextxxx0": {},
		"qmmxxxx0": {},
		"screen$":  {},
		"vcpixxx0": {},
		"xmsxxxx0": {},
	}
)

// SanitizePath rewrites an archive path into a relative slash-separated
// path that can be created on Windows and POSIX hosts. Empty input yields "".
func SanitizePath(p string) (string, error) {
	normalized := NormalizePath(p)
	if normalized == "" {
		return "", nil
	}

	out := sanitizeSegments(strings.Split(normalized, "/"))
	if _, err := normalizeExtractEntryPath(out); err != nil {
		return "", err
	}

	return out, nil
}

// sanitizePaths rewrites archive paths in order. Paths that fail strict
// normalization (".." segments, drive prefixes) are still sanitized per
// segment. Names equal under case folding get "~N" suffixes.
func sanitizePaths(paths []string) ([]string, error) {
	names := newNameSet(len(paths))
	out := make([]string, len(paths))
	for n, raw := range paths {
		rel, err := normalizeExtractEntryPath(raw)
		if err != nil {
			rel = strings.ReplaceAll(raw, `\`, "/")
		}

		name, err := names.claim(sanitizeSegments(strings.Split(rel, "/")))
		if err != nil {
			return nil, fmt.Errorf("sanitize path %s: %w", raw, err)
		}

		if _, err := normalizeExtractEntryPath(name); err != nil {
			return nil, fmt.Errorf("sanitize path %s: %w", raw, err)
		}

		out[n] = name
	}

	return out, nil
}

// sanitizeSegments joins sanitized non-empty segments, "_" when none remain.
func sanitizeSegments(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}

		out = append(out, sanitizeSegment(part))
	}

	if len(out) == 0 {
		return "_"
	}

	return strings.Join(out, "/")
}

// sanitizeSegment makes one file or directory name safe to create.
func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	reserved := isReservedDeviceName(segment)

	segment = strings.TrimRight(strings.Map(safeNameRune, segment), ". ")
	if segment == "" {
		return "_"
	}

	if reserved || isReservedDeviceName(segment) {
		segment = "_" + segment
	}

	return shortenSegment(segment, maxSanitizedSegmentLen)
}

// safeNameRune maps runes Windows refuses in names, control and format
// characters and undecodable input to '_'.
func safeNameRune(r rune) rune {
	switch {
	case r == utf8.RuneError:
		// Invalid UTF-8, or a Windows-1252 byte the decoder could not map.
		return '_'
	case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
		return '_'
	case strings.ContainsRune(`<>:"/\|?*`, r):
		return '_'
	default:
		return r
	}
}

// isReservedDeviceName reports whether name, ignoring extension and case,
// is a DOS/Windows/OS2 device name.
func isReservedDeviceName(name string) bool {
	stem := strings.ToLower(strings.TrimSpace(name))
	if dot := strings.IndexByte(stem, '.'); dot >= 0 {
		stem = stem[:dot]
	}

	stem = strings.TrimRight(stem, ". :")
	if stem == "" {
		return false
	}

	_, ok := reservedDOSNames[stem]
	return ok
}

// nameSet hands out output names that stay distinct under case folding.
type nameSet struct {
	used map[string]struct{}
	next map[string]int
}

func newNameSet(capacity int) *nameSet {
	return &nameSet{
		used: make(map[string]struct{}, capacity),
		next: make(map[string]int, capacity),
	}
}

// claim returns name, or name with the lowest free "~N" suffix (N >= 2).
func (s *nameSet) claim(name string) (string, error) {
	key := lookupKey(name)
	if _, taken := s.used[key]; !taken {
		s.used[key] = struct{}{}
		return name, nil
	}

	dir, base := path.Split(name)
	for n := max(s.next[key], 2); n < 1_000_000; n++ {
		candidate := dir + withNumericSuffix(base, n)
		candidateKey := lookupKey(candidate)
		if _, taken := s.used[candidateKey]; taken {
			continue
		}

		s.used[candidateKey] = struct{}{}
		s.next[key] = n + 1
		return candidate, nil
	}

	return "", ErrInvalidExtractPath
}

// dirCase folds directory prefixes onto the spelling they were first seen
// with. Pak paths compare case-insensitively, so "images/a.png" and
// "Images/b.png" share one output directory.
type dirCase map[string]string

// fold rewrites the directory part of a normalized relative path.
func (d dirCase) fold(p string) string {
	dir, base := path.Split(p)
	if dir == "" {
		return p
	}

	prefix := ""
	for _, part := range strings.Split(strings.TrimSuffix(dir, "/"), "/") {
		if prefix != "" {
			prefix += "/"
		}
		prefix += part

		key := lookupKey(prefix)
		if first, ok := d[key]; ok {
			prefix = first
			continue
		}

		d[key] = prefix
	}

	return prefix + "/" + base
}

// withNumericSuffix inserts "~N" before the extension within the segment cap.
func withNumericSuffix(name string, n int) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	suffix := "~" + strconv.Itoa(n)

	return shortenSegment(stem, max(maxSanitizedSegmentLen-len(ext)-len(suffix), 1)) + suffix + ext
}

// shortenSegment cuts value to maxLen bytes, ending long cuts with an FNV
// hash of the full value so distinct inputs stay distinct.
func shortenSegment(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}

	if maxLen <= 10 {
		return value[:maxLen]
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(value))
	tag := fmt.Sprintf("~%08x", h.Sum32())

	return value[:maxLen-len(tag)] + tag
}
