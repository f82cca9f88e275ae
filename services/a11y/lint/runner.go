// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/engine"
	"github.com/AleutianAI/a11ylint/services/a11y/rules"
)

// DefaultExcludeDirs are never descended into by LintDirectory.
var DefaultExcludeDirs = []string{"node_modules", "vendor", "dist", "build"}

// ResultCache stores results by content key.
//
// Implementations must be safe for concurrent use. A Get miss returns
// (nil, false, nil).
type ResultCache interface {
	Get(ctx context.Context, key string) (*LintResult, bool, error)
	Put(ctx context.Context, key string, result *LintResult) error
}

// =============================================================================
// LINT RUNNER
// =============================================================================

// LintRunner parses files and runs the accessibility rules over them.
//
// Description:
//
//	Each file is parsed into one or more markup trees (one per Markdown
//	code block), every rule runs over every tree with fresh per-file
//	state, and the resulting issues are bucketed through the policy.
//
// Thread Safety: Safe for concurrent use. Rules keep their per-file state
// inside Create, so one rule set serves every goroutine.
type LintRunner struct {
	registry    *ast.ParserRegistry
	rules       []engine.Rule
	policy      *RulePolicy
	cache       ResultCache
	fingerprint string
	concurrency int
	excludeDirs []string
	workingDir  string
}

// Option configures the LintRunner.
type Option func(*LintRunner)

// WithRegistry sets the parser registry.
func WithRegistry(registry *ast.ParserRegistry) Option {
	return func(r *LintRunner) {
		r.registry = registry
	}
}

// WithRules sets the rule set. An empty set keeps the default rules.
func WithRules(rs ...engine.Rule) Option {
	return func(r *LintRunner) {
		if len(rs) > 0 {
			r.rules = rs
		}
	}
}

// WithPolicy sets the severity policy.
func WithPolicy(policy *RulePolicy) Option {
	return func(r *LintRunner) {
		r.policy = policy
	}
}

// WithCache enables result caching. fingerprint must change whenever the
// rules, their options or the policy change.
func WithCache(cache ResultCache, fingerprint string) Option {
	return func(r *LintRunner) {
		r.cache = cache
		r.fingerprint = fingerprint
	}
}

// WithConcurrency bounds parallel file linting. Non-positive values are ignored.
func WithConcurrency(n int) Option {
	return func(r *LintRunner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithExcludeDirs adds directory names skipped by LintDirectory.
func WithExcludeDirs(dirs ...string) Option {
	return func(r *LintRunner) {
		r.excludeDirs = append(r.excludeDirs, dirs...)
	}
}

// WithWorkingDir resolves relative paths against dir.
func WithWorkingDir(dir string) Option {
	return func(r *LintRunner) {
		r.workingDir = dir
	}
}

// NewLintRunner creates a new lint runner.
//
// Description:
//
//	Defaults: the tree-sitter/goldmark parser registry, every registered
//	rule with default options, no policy, no cache, GOMAXPROCS workers.
//
// Outputs:
//
//	*LintRunner - The configured runner
//	error - Non-nil if the default rules could not be built
func NewLintRunner(opts ...Option) (*LintRunner, error) {
	r := &LintRunner{
		concurrency: runtime.GOMAXPROCS(0),
		excludeDirs: append([]string(nil), DefaultExcludeDirs...),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.registry == nil {
		r.registry = ast.NewDefaultRegistry()
	}
	if len(r.rules) == 0 {
		all, err := rules.All()
		if err != nil {
			return nil, fmt.Errorf("building default rules: %w", err)
		}
		r.rules = all
	}
	return r, nil
}

// Rules returns the active rules.
func (r *LintRunner) Rules() []engine.Rule {
	out := make([]engine.Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Policy returns the active policy, may be nil.
func (r *LintRunner) Policy() *RulePolicy {
	return r.policy
}

// Extensions returns the lintable file extensions, sorted.
func (r *LintRunner) Extensions() []string {
	return r.registry.Extensions()
}

// ExcludeDirs returns the directory names skipped by LintDirectory.
func (r *LintRunner) ExcludeDirs() []string {
	return append([]string(nil), r.excludeDirs...)
}

// Lintable reports whether a parser handles path.
func (r *LintRunner) Lintable(path string) bool {
	_, ok := r.registry.ForPath(path)
	return ok
}

func (r *LintRunner) resolve(path string) string {
	if r.workingDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.workingDir, path)
}

// Lint reads and lints one file.
//
// Inputs:
//
//	ctx - Context for cancellation
//	filePath - Path to the file (absolute or relative to the working dir)
//
// Outputs:
//
//	*LintResult - The result, FilePath set to filePath as given
//	error - ErrInvalidInput, ErrUnsupportedFile, or a *LintError
func (r *LintRunner) Lint(ctx context.Context, filePath string) (*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if !r.Lintable(filePath) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filePath)
	}

	content, err := os.ReadFile(r.resolve(filePath))
	if err != nil {
		return nil, NewLintError("read", filePath, err)
	}
	return r.LintContent(ctx, content, filePath)
}

// LintContent lints in-memory content as if it were filename.
//
// Description:
//
//	The parser is chosen from filename's extension. Syntax errors do not
//	fail the lint; they are listed in ParseErrors and the recovered tree
//	is still checked.
//
// Inputs:
//
//	ctx - Context for cancellation
//	content - Source bytes
//	filename - Name used for parser selection and issue locations
//
// Outputs:
//
//	*LintResult - The result
//	error - ErrInvalidInput, ErrUnsupportedFile, or a *LintError
//
// Thread Safety: Safe for concurrent use.
func (r *LintRunner) LintContent(ctx context.Context, content []byte, filename string) (*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if filename == "" {
		return nil, fmt.Errorf("%w: filename must not be empty", ErrInvalidInput)
	}

	parser, ok := r.registry.ForPath(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
	language := parser.Language()

	ctx, span := startLintSpan(ctx, filename, len(content))
	defer span.End()
	start := time.Now()

	key := r.cacheKey(language, filename, content)
	if cached := r.cached(ctx, key, filename); cached != nil {
		recordCacheHit(ctx, language)
		return cached, nil
	}

	parsed, err := parser.Parse(ctx, content, filename)
	if err != nil {
		recordLintMetrics(ctx, language, time.Since(start), nil, false)
		return nil, NewLintError("parse", filename, err)
	}

	issues := make([]LintIssue, 0)
	for _, unit := range parsed.Units {
		for _, d := range engine.Run(unit.Tree, filename, r.rules) {
			issues = append(issues, issueFromDiagnostic(filename, d))
		}
	}

	errs, warnings, infos := ApplyPolicy(issues, r.policy)
	result := &LintResult{
		Valid:       len(errs) == 0,
		Errors:      errs,
		Warnings:    warnings,
		Infos:       infos,
		Duration:    time.Since(start),
		Linter:      LinterName,
		Language:    language,
		FilePath:    filename,
		Hash:        parsed.Hash,
		ParseErrors: parsed.Errors,
	}

	r.store(ctx, key, result)
	recordLintMetrics(ctx, language, result.Duration, result, true)
	return result, nil
}

// cacheKey scopes entries by language and extension, since the extension
// selects the grammar that produced the result.
func (r *LintRunner) cacheKey(language, filename string, content []byte) string {
	if r.cache == nil {
		return ""
	}
	sum := sha256.Sum256(content)
	ext := strings.ToLower(filepath.Ext(filename))
	return r.fingerprint + ":" + language + ":" + ext + ":" + hex.EncodeToString(sum[:])
}

// cached returns a cache hit relocated to filename, or nil.
func (r *LintRunner) cached(ctx context.Context, key, filename string) *LintResult {
	if r.cache == nil {
		return nil
	}
	hit, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Result cache read failed",
			slog.String("file", filename),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if !ok || hit == nil {
		return nil
	}
	return relocate(hit, filename)
}

func (r *LintRunner) store(ctx context.Context, key string, result *LintResult) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Put(ctx, key, result); err != nil {
		slog.Warn("Result cache write failed",
			slog.String("file", result.FilePath),
			slog.String("error", err.Error()),
		)
	}
}

// relocate copies a cached result onto a new path. Identical content at
// two paths shares one cache entry.
func relocate(src *LintResult, filename string) *LintResult {
	out := *src
	out.FilePath = filename
	out.Cached = true
	out.Duration = 0
	move := func(in []LintIssue) []LintIssue {
		moved := make([]LintIssue, len(in))
		for i, issue := range in {
			issue.File = filename
			moved[i] = issue
		}
		return moved
	}
	out.Errors = move(src.Errors)
	out.Warnings = move(src.Warnings)
	out.Infos = move(src.Infos)
	return &out
}

// LintFiles lints paths with bounded concurrency.
//
// Description:
//
//	Results are returned in input order. A file that fails leaves a nil
//	slot and contributes to the joined error; the other files still run.
//	Cancellation of ctx stops scheduling new files.
//
// Outputs:
//
//	[]*LintResult - One slot per path, nil for failures
//	error - errors.Join of per-file failures, or ctx.Err()
func (r *LintRunner) LintFiles(ctx context.Context, paths []string) ([]*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	results := make([]*LintResult, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			result, err := r.Lint(gctx, path)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, errors.Join(failures...)
}

// LintDirectory lints every lintable file under root.
//
// Description:
//
//	Hidden directories and the configured exclude directories are
//	skipped. Files are linted in lexical path order.
func (r *LintRunner) LintDirectory(ctx context.Context, root string) ([]*LintResult, error) {
	paths, err := r.Collect(root)
	if err != nil {
		return nil, err
	}
	slog.Info("Linting directory",
		slog.String("root", root),
		slog.Int("files", len(paths)),
	)
	return r.LintFiles(ctx, paths)
}

// Collect returns the lintable files under root, sorted. A root that is a
// file is returned as is when lintable.
func (r *LintRunner) Collect(root string) ([]string, error) {
	info, err := os.Stat(r.resolve(root))
	if err != nil {
		return nil, NewLintError("read", root, err)
	}
	if !info.IsDir() {
		if r.Lintable(root) {
			return []string{root}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, root)
	}

	var paths []string
	walkRoot := r.resolve(root)
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != walkRoot && r.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if r.Lintable(path) {
			rel, relErr := filepath.Rel(walkRoot, path)
			if relErr != nil {
				return relErr
			}
			paths = append(paths, filepath.Join(root, rel))
		}
		return nil
	})
	if err != nil {
		return nil, NewLintError("read", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (r *LintRunner) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ex := range r.excludeDirs {
		if name == ex {
			return true
		}
	}
	return false
}
