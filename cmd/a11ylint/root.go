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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/a11ylint/pkg/logging"
	"github.com/AleutianAI/a11ylint/services/a11y"
	"github.com/AleutianAI/a11ylint/services/a11y/config"
	"github.com/AleutianAI/a11ylint/services/a11y/telemetry"
)

// app holds state shared by every subcommand.
type app struct {
	// flags
	configPath string
	workDir    string
	logLevel   string
	logJSON    bool

	// resolved in PersistentPreRunE
	cfg     *config.Config
	cfgFile string
	logger  *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "a11ylint",
		Short:         "Accessibility linter for JSX and TSX markup",
		Long:          "a11ylint checks component markup for heading outline and role=\"presentation\" conventions.",
		Version:       a11y.ServiceVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to .a11ylint.yaml (default: discovered upward from the working directory)")
	flags.StringVarP(&a.workDir, "chdir", "C", "", "Run as if started in this directory")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")

	root.AddCommand(
		newCheckCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newRulesCmd(a),
		newInitCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return failure(err)
		}
		a.workDir = wd
	}

	cfg, path, err := config.Resolve(a.configPath, a.workDir)
	if err != nil {
		return failure(err)
	}
	a.cfg = cfg
	a.cfgFile = path

	levelName := cfg.Log.Level
	if a.logLevel != "" {
		levelName = a.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return failure(err)
	}

	logger, err := logging.New(logging.Config{
		Level:   level,
		JSON:    a.logJSON || cfg.Log.JSON,
		LogDir:  cfg.Log.Dir,
		Service: cmd.Name(),
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return failure(err)
	}
	a.logger = logger
	slog.SetDefault(logger.Slog())

	if path != "" {
		slog.Debug("Loaded config", slog.String("path", path))
	}
	return nil
}

func (a *app) teardown() error {
	if a.logger == nil {
		return nil
	}
	return a.logger.Close()
}

// service builds the lint service for the resolved config.
func (a *app) service(opts a11y.ServiceOptions) (*a11y.Service, error) {
	opts.WorkingDir = a.workDir
	svc, err := a11y.NewService(a.cfg, opts)
	if err != nil {
		return nil, failure(err)
	}
	return svc, nil
}

// telemetry installs providers for the configured exporters. The
// Prometheus exporter needs a scrape endpoint, so only serve keeps it.
func (a *app) telemetry(ctx context.Context, serving bool) (*telemetry.Provider, error) {
	cfg := telemetry.FromSettings(a.cfg.Telemetry, a11y.ServiceVersion)
	if !serving && cfg.MetricExporter == telemetry.ExporterPrometheus {
		cfg.MetricExporter = telemetry.ExporterNone
	}
	p, err := telemetry.Init(ctx, cfg)
	if err != nil {
		return nil, failure(fmt.Errorf("telemetry: %w", err))
	}
	return p, nil
}
