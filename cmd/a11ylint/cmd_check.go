// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/a11ylint/services/a11y"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
	"github.com/AleutianAI/a11ylint/services/a11y/report"
)

type checkOptions struct {
	format        string
	diffPath      string
	stdinFilename string
	noCache       bool
}

func newCheckCmd(a *app) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Lint files and directories",
		Long: `Lint .tsx, .jsx, .ts, .js files and jsx/tsx code blocks in .md/.mdx files.

Directories are walked recursively, skipping hidden directories,
node_modules, vendor, dist, build, and the configured excludes.

With --diff, only findings on lines added by the unified diff are
reported. Use "-" to read the diff from stdin.`,
		Example: `  a11ylint check src
  git diff -U0 | a11ylint check --diff - src
  cat Page.tsx | a11ylint check --stdin-filename Page.tsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, a, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", string(report.FormatText), "Output format: text or json")
	f.StringVar(&opts.diffPath, "diff", "", "Only report findings on lines added by this unified diff file")
	f.StringVar(&opts.stdinFilename, "stdin-filename", "", "Lint stdin as a file with this name")
	f.BoolVar(&opts.noCache, "no-cache", false, "Bypass the result cache")
	return cmd
}

func runCheck(cmd *cobra.Command, a *app, opts *checkOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reporter, err := report.New(report.Format(opts.format), colorFor(cmd.OutOrStdout()))
	if err != nil {
		return failure(err)
	}
	if opts.stdinFilename != "" && opts.diffPath == "-" {
		return failure(errors.New("--diff - and --stdin-filename both read stdin"))
	}

	var diffText string
	if opts.diffPath != "" {
		diffText, err = readDiff(cmd.InOrStdin(), opts.diffPath)
		if err != nil {
			return failure(err)
		}
	}

	provider, err := a.telemetry(ctx, false)
	if err != nil {
		return err
	}
	defer provider.Shutdown(context.Background())

	svc, err := a.service(a11y.ServiceOptions{DisableCache: opts.noCache})
	if err != nil {
		return err
	}
	defer svc.Close()
	runner := svc.Runner()

	var results []*lint.LintResult
	var lintErr error
	if opts.stdinFilename != "" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return failure(fmt.Errorf("reading stdin: %w", err))
		}
		result, err := runner.LintContent(ctx, content, opts.stdinFilename)
		if err != nil {
			return failure(err)
		}
		results = []*lint.LintResult{result}
	} else {
		paths, err := collectPaths(runner, args)
		if err != nil {
			return failure(err)
		}
		results, lintErr = runner.LintFiles(ctx, paths)
	}

	if diffText != "" {
		results, err = lint.FilterByDiff(results, diffText)
		if err != nil {
			return failure(err)
		}
	}

	if err := reporter.Report(cmd.OutOrStdout(), results); err != nil {
		return failure(err)
	}

	if lintErr != nil {
		return failure(lintErr)
	}
	if lint.Summarize(results).Blocking() {
		return findings()
	}
	return nil
}

// collectPaths expands args into lintable files, deduplicated in order.
func collectPaths(runner *lint.LintRunner, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	seen := make(map[string]bool)
	var paths []string
	for _, arg := range args {
		found, err := runner.Collect(arg)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			key := filepath.Clean(p)
			if seen[key] {
				continue
			}
			seen[key] = true
			paths = append(paths, p)
		}
	}
	slog.Debug("Collected files", slog.Int("files", len(paths)))
	return paths, nil
}

func readDiff(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading diff: %w", err)
	}
	return string(data), nil
}

// colorFor enables color only when w is a terminal.
func colorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && report.ColorEnabled(f)
}
