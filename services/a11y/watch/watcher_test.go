// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

func TestDedupe_KeepsLatestPerPath(t *testing.T) {
	in := []Change{
		{Path: "a", Op: OpCreate},
		{Path: "b", Op: OpWrite},
		{Path: "a", Op: OpWrite},
	}
	out := dedupe(in)
	require.Len(t, out, 2)
	assert.Equal(t, Change{Path: "a", Op: OpWrite}, out[0])
	assert.Equal(t, "b", out[1].Path)
}

func TestConvertOp(t *testing.T) {
	assert.Equal(t, OpCreate, convertOp(fsnotify.Create))
	assert.Equal(t, OpWrite, convertOp(fsnotify.Write))
	assert.Equal(t, OpRemove, convertOp(fsnotify.Remove))
	assert.Equal(t, OpRename, convertOp(fsnotify.Rename))
	assert.Equal(t, OpWrite, convertOp(fsnotify.Chmod))
	assert.True(t, OpRemove.Gone())
	assert.False(t, OpWrite.Gone())
	assert.Equal(t, "rename", OpRename.String())
}

func TestWatcher_Ignored(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, nil, DefaultOptions())
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.ignored(filepath.Join(root, "node_modules", "x", "A.tsx")))
	assert.True(t, w.ignored(filepath.Join(root, ".git", "HEAD")))
	assert.False(t, w.ignored(filepath.Join(root, "src", "A.tsx")))
	assert.False(t, w.ignored(filepath.Join(root, "node_modules.tsx")))
}

func TestWatcher_DeliversDebouncedBatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	var mu sync.Mutex
	var batches [][]Change
	got := make(chan struct{}, 4)

	opts := DefaultOptions()
	opts.Debounce = 50 * time.Millisecond
	opts.Accept = func(path string) bool { return strings.HasSuffix(path, ".tsx") }

	w, err := New(root, func(changes []Change) {
		mu.Lock()
		batches = append(batches, changes)
		mu.Unlock()
		got <- struct{}{}
	}, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()
	assert.True(t, w.IsWatching())

	path := filepath.Join(root, "src", "A.tsx")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("const a = 1\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.txt"), []byte("x"), 0o644))

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, batches)
	paths := map[string]int{}
	for _, c := range batches[0] {
		paths[c.Path]++
	}
	assert.Equal(t, map[string]int{path: 1}, paths)
}

type fakeLinter struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeLinter) Lintable(path string) bool {
	return strings.HasSuffix(path, ".tsx")
}

func (f *fakeLinter) LintFiles(_ context.Context, paths []string) ([]*lint.LintResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, paths...)
	out := make([]*lint.LintResult, len(paths))
	for i, p := range paths {
		out[i] = &lint.LintResult{Valid: true, FilePath: p}
	}
	return out, nil
}

func TestWatcher_StopAfterFailedStart(t *testing.T) {
	w, err := New(t.TempDir(), func([]Change) {}, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, w.fsw.Close())

	err = w.Start(context.Background())
	require.Error(t, err)
	assert.False(t, w.IsWatching())

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after a failed Start")
	}
}

func TestRelinter_SkipsRemovedFiles(t *testing.T) {
	linter := &fakeLinter{}
	var delivered []*lint.LintResult
	r := NewRelinter(context.Background(), linter, func(results []*lint.LintResult, err error) {
		assert.NoError(t, err)
		delivered = results
	})

	r.Handle([]Change{
		{Path: "a.tsx", Op: OpWrite},
		{Path: "b.tsx", Op: OpRemove},
		{Path: "c.tsx", Op: OpCreate},
	})

	assert.Equal(t, []string{"a.tsx", "c.tsx"}, linter.paths)
	assert.Len(t, delivered, 2)

	r.Handle([]Change{{Path: "d.tsx", Op: OpRename}})
	assert.Len(t, linter.paths, 2, "batches with only removals do not lint")
	assert.True(t, r.Accept("x.tsx"))
	assert.False(t, r.Accept("x.go"))
}
