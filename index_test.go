// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import "testing"

func TestIndexLookup(t *testing.T) {
	t.Parallel()

	idx, err := Parse(buildPak(t, []pakEntry{
		{name: `properties\resources.xml`, data: []byte("<xml/>")},
		{name: "images/Logo.png", data: []byte("png")},
	}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	testCases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "properties/resources.xml", want: `properties\resources.xml`, ok: true},
		{in: `PROPERTIES\RESOURCES.XML`, want: `properties\resources.xml`, ok: true},
		{in: "./images//logo.PNG", want: "images/Logo.png", ok: true},
		{in: "images", ok: false},
		{in: "logo.png", ok: false},
	}

	for _, tc := range testCases {
		e, ok := idx.Lookup(tc.in)
		if ok != tc.ok {
			t.Fatalf("Lookup(%q) ok=%v, want %v", tc.in, ok, tc.ok)
		}

		if ok && e.Path != tc.want {
			t.Fatalf("Lookup(%q)=%q, want %q", tc.in, e.Path, tc.want)
		}
	}
}

func TestIndexEntriesIsCopy(t *testing.T) {
	t.Parallel()

	idx, err := Parse(buildPak(t, []pakEntry{{name: "a.txt", data: []byte("a")}}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	entries := idx.Entries()
	entries[0].Path = "changed"

	if got := idx.Entries()[0].Path; got != "a.txt" {
		t.Fatalf("index mutated through Entries copy: %q", got)
	}
}

func TestIndexNil(t *testing.T) {
	t.Parallel()

	var idx *Index
	if idx.Len() != 0 || idx.Entries() != nil {
		t.Fatal("nil index must be empty")
	}

	if _, ok := idx.Lookup("a"); ok {
		t.Fatal("nil index lookup must fail")
	}
}

func TestIndexChildOf(t *testing.T) {
	t.Parallel()

	idx, err := Parse(buildPak(t, []pakEntry{
		{name: "Images/logo.png"},
		{name: `images\icons\a.png`},
		{name: "data/x.txt"},
		{name: "imagesX/y.png"},
	}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	testCases := []struct {
		dirKey string
		want   string
		pos    int
		ok     bool
	}{
		{pos: 0, dirKey: "", want: "Images/logo.png", ok: true},
		{pos: 0, dirKey: "IMAGES", want: "logo.png", ok: true},
		{pos: 1, dirKey: "IMAGES", want: "icons/a.png", ok: true},
		{pos: 1, dirKey: "IMAGES/ICONS", want: "a.png", ok: true},
		{pos: 2, dirKey: "IMAGES", ok: false},
		{pos: 3, dirKey: "IMAGES", ok: false},
		{pos: 0, dirKey: "IMAGES/LOGO.PNG", ok: false},
	}

	for _, tc := range testCases {
		got, ok := idx.childOf(tc.pos, tc.dirKey)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("childOf(%d, %q)=(%q, %v), want (%q, %v)", tc.pos, tc.dirKey, got, ok, tc.want, tc.ok)
		}
	}
}
