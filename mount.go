// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"fmt"

	"github.com/spf13/afero"
)

// mount owns one archive buffer and its parsed index.
// Streams opened from it borrow sub-slices of data.
type mount struct {
	name  string
	data  []byte
	index *Index
}

// AddPakFile loads and mounts the archive at path. Failures are logged and
// reported as false so optional archives can be probed without aborting.
func (i *Interface) AddPakFile(path string) bool {
	if err := i.Mount(path); err != nil {
		i.log().Warn("add pak file", "path", path, "error", err)
		return false
	}

	return true
}

// Mount loads and mounts the archive at path, returning the failure cause.
func (i *Interface) Mount(path string) error {
	if err := validateInput("pak path", path); err != nil {
		return err
	}

	data, err := afero.ReadFile(i.loader, path)
	if err != nil {
		return fmt.Errorf("read pak %s: %w", path, mapDiskError(path, err))
	}

	return i.MountBytes(path, data)
}

// MountBytes parses data and mounts it under name. The interface takes
// ownership of data; callers must not modify it afterwards.
func (i *Interface) MountBytes(name string, data []byte) error {
	idx, err := ParseWithOptions(data, i.opts.Parse)
	if err != nil {
		return fmt.Errorf("parse pak %s: %w", name, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrUseAfterClose
	}

	i.mounts = append(i.mounts, &mount{name: name, data: data, index: idx})
	i.log().Debug("pak mounted", "name", name, "entries", idx.Len(), "size", idx.Size(), "priority", len(i.mounts)-1)
	return nil
}

// Mounts returns mounted archive names in lookup priority order.
func (i *Interface) Mounts() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]string, len(i.mounts))
	for n, m := range i.mounts {
		out[n] = m.name
	}

	return out
}

// Index returns the parsed index of a mounted archive by name.
func (i *Interface) Index(name string) (*Index, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, m := range i.mounts {
		if m.name == name {
			return m.index, true
		}
	}

	return nil, false
}
