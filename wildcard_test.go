// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import "testing"

func TestMatchWildcard(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		pattern string
		name    string
		want    bool
	}{
		{pattern: "*", name: "logo.png", want: true},
		{pattern: "*", name: "", want: true},
		{pattern: "", name: "", want: true},
		{pattern: "", name: "a", want: false},
		{pattern: "*.png", name: "LOGO.PNG", want: true},
		{pattern: "*.png", name: "logo.jpg", want: false},
		{pattern: "?ogo.png", name: "logo.png", want: true},
		{pattern: "log?.png", name: "logo.pn", want: false},
		{pattern: "a*b*c", name: "axxbyyc", want: true},
		{pattern: "a*b", name: "ac", want: false},
		{pattern: "*a*a", name: "banana", want: true},
		{pattern: "[a]", name: "[A]", want: true},
		{pattern: "[a]", name: "a", want: false},
		{pattern: "café*", name: "CAFÉ.txt", want: true},
	}

	for _, tc := range testCases {
		if got := matchWildcard(tc.pattern, tc.name); got != tc.want {
			t.Fatalf("matchWildcard(%q, %q)=%v, want %v", tc.pattern, tc.name, got, tc.want)
		}
	}
}

func TestSplitPattern(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in       string
		wantDir  string
		wantBase string
	}{
		{in: "images/*", wantDir: "images", wantBase: "*"},
		{in: `images\`, wantDir: "images", wantBase: "*"},
		{in: "*.png", wantDir: "", wantBase: "*.png"},
		{in: "/*", wantDir: "/", wantBase: "*"},
		{in: `a\b/c?`, wantDir: "a/b", wantBase: "c?"},
		{in: "./data/*.txt", wantDir: "data", wantBase: "*.txt"},
	}

	for _, tc := range testCases {
		dir, base := splitPattern(tc.in)
		if dir != tc.wantDir || base != tc.wantBase {
			t.Fatalf("splitPattern(%q)=(%q, %q), want (%q, %q)", tc.in, dir, base, tc.wantDir, tc.wantBase)
		}
	}
}
