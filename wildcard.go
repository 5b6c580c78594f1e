// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import "strings"

// matchWildcard reports whether name matches a single-segment pattern
// using classic "*" and "?" semantics, case-insensitively.
// "[" and "\" have no special meaning, unlike path.Match.
func matchWildcard(pattern string, name string) bool {
	p := []rune(strings.ToUpper(pattern))
	n := []rune(strings.ToUpper(name))

	pi, ni := 0, 0
	starP, starN := -1, 0
	for ni < len(n) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == n[ni]):
			pi++
			ni++
		case pi < len(p) && p[pi] == '*':
			starP = pi
			starN = ni
			pi++
		case starP >= 0:
			// Backtrack: let the last star swallow one more rune.
			pi = starP + 1
			starN++
			ni = starN
		default:
			return false
		}
	}

	for pi < len(p) && p[pi] == '*' {
		pi++
	}

	return pi == len(p)
}

// splitPattern splits a search pattern into slash-separated directory and final-segment glob.
// An empty final segment (pattern ends with separator) matches everything like "*".
func splitPattern(pattern string) (string, string) {
	p := normalizeSeparators(pattern)
	dir, base := splitDirBase(p)
	if base == "" {
		base = "*"
	}

	if dir == "" && strings.HasPrefix(p, "/") {
		dir = "/"
	}

	return dir, base
}
