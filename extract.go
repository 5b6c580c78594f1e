// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pak

package pak

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// extractCopyBufferSize defines per-task buffer size for file copy during extraction.
const extractCopyBufferSize = 64 * 1024

var (
	// extractBufferPool reuses copy buffers between extraction tasks.
	extractBufferPool = sync.Pool{
		New: func() any {
			buf := make([]byte, extractCopyBufferSize)
			return &buf
		},
	}
)

// extractWorkItem stores one selected entry with prepared output relative paths.
type extractWorkItem struct {
	store   *archiveStore
	path    string
	relPath string
	relDir  string
}

// Extract writes every listed archive path (see ListAllFilePaths) below
// dstDir. OnEntryDone receives the listed path. Extraction runs with MaxWorkers parallel tasks reading directly
// from mount buffers; on failure it returns the first encountered error.
func (i *Interface) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	opts.applyDefaults()

	matcher, err := newPathMatcher(opts.Rules, opts.MatcherOptions)
	if err != nil {
		return err
	}

	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return ErrUseAfterClose
	}

	visible := i.visibleEntries()
	i.mu.Unlock()

	paths := make([]string, 0, len(visible))
	stored := make([]string, 0, len(visible))
	stores := make([]*archiveStore, 0, len(visible))
	for _, v := range visible {
		if !matcher.Match(v.entry.Path) {
			continue
		}

		paths = append(paths, NormalizePath(v.entry.Path))
		stored = append(stored, v.entry.Path)
		stores = append(stores, newArchiveStore(v.mount.data, v.entry, v.mount.index.key))
	}

	if len(paths) == 0 {
		return nil
	}

	// Output names come from stored paths so RawNames still rejects traversal.
	outNames := stored
	if !opts.RawNames {
		outNames, err = sanitizePaths(stored)
		if err != nil {
			return err
		}
	}

	workItems, err := prepareExtractWorkItems(paths, outNames, stores)
	if err != nil {
		return err
	}

	dstRoot := filepath.Clean(dstDir)
	if err := opts.FS.MkdirAll(dstRoot, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := prepareExtractDirs(opts.FS, dstRoot, workItems); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxWorkers)
	for _, task := range workItems {
		g.Go(func() error {
			return extractPreparedEntry(gctx, opts.FS, dstRoot, task, opts.OnEntryDone)
		})
	}

	return g.Wait()
}

// prepareExtractWorkItems validates selected entries and prepares relative fs
// paths, folding directory case onto the first spelling seen.
func prepareExtractWorkItems(paths []string, outNames []string, stores []*archiveStore) ([]extractWorkItem, error) {
	workItems := make([]extractWorkItem, 0, len(paths))
	dirs := make(dirCase)
	for n := range paths {
		if strings.TrimSpace(outNames[n]) == "" {
			continue
		}

		normalizedPath, err := normalizeExtractEntryPath(outNames[n])
		if err != nil {
			return nil, fmt.Errorf("normalize entry path %s: %w", paths[n], err)
		}

		relPath := filepath.FromSlash(dirs.fold(normalizedPath))
		relDir := filepath.Dir(relPath)
		if relDir == "." {
			relDir = ""
		}

		workItems = append(workItems, extractWorkItem{
			store:   stores[n],
			path:    paths[n],
			relPath: relPath,
			relDir:  relDir,
		})
	}

	return workItems, nil
}

// prepareExtractDirs creates all unique parent directories needed by work items.
func prepareExtractDirs(fsys afero.Fs, dstRoot string, workItems []extractWorkItem) error {
	seen := make(map[string]struct{}, len(workItems))
	for _, task := range workItems {
		if task.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRoot, task.relDir)
		if _, exists := seen[dirPath]; exists {
			continue
		}

		seen[dirPath] = struct{}{}
		if err := fsys.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// extractPreparedEntry writes one prepared work item to destination root.
func extractPreparedEntry(
	ctx context.Context,
	fsys afero.Fs,
	dstRoot string,
	task extractWorkItem,
	onEntryDone func(path string, written int64, outputPath string),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	outPath := filepath.Join(dstRoot, task.relPath)
	if !isWithinRoot(dstRoot, outPath) {
		return fmt.Errorf("%w: %s", ErrExtractPathOutsideRoot, task.path)
	}

	file, err := fsys.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", task.path, err)
	}

	bufPtr := extractBufferPool.Get().(*[]byte) //nolint:forcetypeassert // pool contains only *[]byte
	defer extractBufferPool.Put(bufPtr)

	src := io.NewSectionReader(task.store, 0, task.store.Size())
	written, copyErr := io.CopyBuffer(file, src, *bufPtr)
	closeErr := file.Close()
	if copyErr != nil {
		return fmt.Errorf("write %s: %w", task.path, copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", task.path, closeErr)
	}

	if onEntryDone != nil {
		onEntryDone(task.path, written, outPath)
	}

	return nil
}

// isWithinRoot reports whether target stays inside root after cleaning.
func isWithinRoot(root string, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// normalizeExtractEntryPath normalizes entry path and rejects absolute/traversal inputs.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	if raw == "" {
		return "", ErrInvalidExtractPath
	}
	if strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasWindowsAbsDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, `/`), nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with drive-root prefix like C:/.
func hasWindowsAbsDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}

	return isASCIIAlpha(path[0]) && path[1] == ':' && path[2] == '/'
}

// isASCIIAlpha reports whether byte is ASCII latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
