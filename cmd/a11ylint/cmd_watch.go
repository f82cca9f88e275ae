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
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/a11ylint/services/a11y"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
	"github.com/AleutianAI/a11ylint/services/a11y/report"
	"github.com/AleutianAI/a11ylint/services/a11y/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var format string
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-lint files as they change",
		Long: `Lint the directory once, then re-lint each lintable file when it is
written. Changes are batched until no write arrives for the debounce
period. Stop with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(a.workDir, dir)
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reporter, err := report.New(report.Format(format), colorFor(cmd.OutOrStdout()))
			if err != nil {
				return failure(err)
			}

			provider, err := a.telemetry(ctx, false)
			if err != nil {
				return err
			}
			defer provider.Shutdown(context.Background())

			svc, err := a.service(a11y.ServiceOptions{})
			if err != nil {
				return err
			}
			defer svc.Close()
			runner := svc.Runner()

			show := func(results []*lint.LintResult, err error) {
				if err != nil {
					slog.Warn("Some files could not be linted", slog.String("error", err.Error()))
				}
				if rerr := reporter.Report(cmd.OutOrStdout(), results); rerr != nil {
					slog.Error("Failed to write report", slog.String("error", rerr.Error()))
				}
			}

			show(runner.LintDirectory(ctx, dir))

			opts := watch.DefaultOptions()
			opts.Debounce = debounce
			opts.IgnoreDirs = runner.ExcludeDirs()
			if err := watch.Run(ctx, dir, runner, opts, show); err != nil {
				return failure(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "Output format: text or json")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-linting")
	return cmd
}
