// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"fmt"

	"github.com/woozymasta/pathrules"
)

// ListAllFilePaths returns normalized archive entry paths ("/" separated,
// case kept), mounts in priority order and entries in table order. The host filesystem is not included.
// Entries without a valid FILETIME are skipped unless AllowMissingFileTime
// is set, and paths shadowed by an earlier mount are listed once.
func (i *Interface) ListAllFilePaths() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.listPaths()
}

// ListFilePaths returns ListAllFilePaths filtered by ordered path rules.
// Zero-valued opts match case-insensitively and exclude by default.
func (i *Interface) ListFilePaths(rules []pathrules.Rule, opts pathrules.MatcherOptions) ([]string, error) {
	matcher, err := newPathMatcher(rules, opts)
	if err != nil {
		return nil, err
	}

	paths := i.ListAllFilePaths()
	if matcher == nil {
		return paths, nil
	}

	out := paths[:0]
	for _, p := range paths {
		if matcher.Match(p) {
			out = append(out, p)
		}
	}

	return out, nil
}

// listPaths collects visible archive paths. Caller must hold i.mu.
func (i *Interface) listPaths() []string {
	visible := i.visibleEntries()
	out := make([]string, len(visible))
	for n := range visible {
		out[n] = NormalizePath(visible[n].entry.Path)
	}

	return out
}

// visibleEntry is one archive entry reachable through the namespace.
type visibleEntry struct {
	mount *mount
	entry Entry
}

// visibleEntries returns entries that resolution can reach, in listing order.
// Caller must hold i.mu.
func (i *Interface) visibleEntries() []visibleEntry {
	total := 0
	for _, m := range i.mounts {
		total += m.index.Len()
	}

	out := make([]visibleEntry, 0, total)
	seen := make(map[string]struct{}, total)
	for _, m := range i.mounts {
		for pos, entry := range m.index.entries {
			if !entry.FileTime.Valid() && !i.opts.AllowMissingFileTime {
				continue
			}

			key := m.index.keys[pos]
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
			out = append(out, visibleEntry{mount: m, entry: entry})
		}
	}

	return out
}

// pathMatcher holds compiled path rules.
type pathMatcher struct {
	matcher *pathrules.Matcher
}

// newPathMatcher compiles rules; it returns nil when no usable rule is given.
func newPathMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*pathMatcher, error) {
	rules = normalizeRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	if opts == (pathrules.MatcherOptions{}) {
		opts = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.DefaultAction == pathrules.ActionUnknown {
		opts.DefaultAction = pathrules.ActionExclude
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidRules, err)
	}

	return &pathMatcher{matcher: matcher}, nil
}

// normalizeRules normalizes rule patterns and drops empty patterns.
func normalizeRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizeSeparators(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether path is included by rules.
func (m *pathMatcher) Match(p string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	candidate := NormalizePath(p)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}
