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
	"log/slog"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// Linter is the part of lint.LintRunner the relinter needs.
type Linter interface {
	Lintable(path string) bool
	LintFiles(ctx context.Context, paths []string) ([]*lint.LintResult, error)
}

// ResultsFunc receives the results of one re-lint batch.
type ResultsFunc func(results []*lint.LintResult, err error)

// Relinter turns change batches into lint runs.
type Relinter struct {
	linter  Linter
	results ResultsFunc
	ctx     context.Context
}

// NewRelinter creates a relinter. ctx bounds every lint run.
func NewRelinter(ctx context.Context, linter Linter, results ResultsFunc) *Relinter {
	return &Relinter{linter: linter, results: results, ctx: ctx}
}

// Accept is an Options.Accept filter for lintable files.
func (r *Relinter) Accept(path string) bool {
	return r.linter.Lintable(path)
}

// Handle is a Handler that lints every changed file still on disk.
func (r *Relinter) Handle(changes []Change) {
	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		if c.Op.Gone() {
			continue
		}
		paths = append(paths, c.Path)
	}
	if len(paths) == 0 {
		return
	}

	slog.Debug("Re-linting changed files", slog.Int("files", len(paths)))
	results, err := r.linter.LintFiles(r.ctx, paths)
	if r.results != nil {
		r.results(results, err)
	}
}

// Run watches root and re-lints changes until ctx is canceled.
func Run(ctx context.Context, root string, linter Linter, opts Options, results ResultsFunc) error {
	relinter := NewRelinter(ctx, linter, results)
	if opts.Accept == nil {
		opts.Accept = relinter.Accept
	}

	w, err := New(root, relinter.Handle, opts)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	slog.Info("Watching for changes", slog.String("root", root))

	<-ctx.Done()
	w.Stop()
	return nil
}
