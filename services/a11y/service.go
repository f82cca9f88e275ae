// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package a11y wires configuration, parsers, rules, and the result cache
// into a lint service, and exposes it over HTTP.
package a11y

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/cache"
	"github.com/AleutianAI/a11ylint/services/a11y/config"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// ServiceVersion is reported by the health endpoint and `a11ylint --version`.
var ServiceVersion = "0.1.0"

// ServiceOptions tune how a Service is built from a Config.
type ServiceOptions struct {
	// WorkingDir resolves relative lint paths and the cache path.
	WorkingDir string

	// DisableCache skips the result cache even when the config enables it.
	DisableCache bool

	// InMemoryCache keeps the cache in memory. Used by `serve` and tests.
	InMemoryCache bool
}

// Service is a configured lint runner plus the resources it owns.
//
// Thread Safety: Safe for concurrent use. Close once when done.
type Service struct {
	cfg     *config.Config
	runner  *lint.LintRunner
	store   *cache.Store
	started time.Time
}

// NewService builds the runner described by cfg.
//
// Description:
//
//	Builds the enabled rules with the configured interactive patterns,
//	a parser registry honoring max_file_size, and, when enabled, a badger
//	result cache keyed by the config's lint-affecting settings.
//
// Inputs:
//
//	cfg - Validated configuration. Nil means DefaultConfig().
//	opts - Build options.
//
// Outputs:
//
//	*Service - The service. Call Close to release the cache.
//	error - Non-nil if rules or the cache cannot be built.
func NewService(cfg *config.Config, opts ServiceOptions) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	enabled, err := cfg.BuildRules()
	if err != nil {
		return nil, fmt.Errorf("building rules: %w", err)
	}

	policy := cfg.Policy
	runnerOpts := []lint.Option{
		lint.WithRegistry(ast.NewDefaultRegistry(ast.WithMaxFileSize(cfg.MaxFileSize))),
		lint.WithRules(enabled...),
		lint.WithPolicy(&policy),
		lint.WithConcurrency(cfg.Concurrency),
		lint.WithExcludeDirs(cfg.Exclude...),
		lint.WithWorkingDir(opts.WorkingDir),
	}

	svc := &Service{cfg: cfg, started: time.Now()}

	if cfg.Cache.Enabled && !opts.DisableCache {
		store, err := openStore(cfg, opts)
		if err != nil {
			return nil, err
		}
		svc.store = store
		runnerOpts = append(runnerOpts, lint.WithCache(store, cache.Fingerprint(ServiceVersion, cfg.CacheMaterial())))
	}

	runner, err := lint.NewLintRunner(runnerOpts...)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.runner = runner

	slog.Debug("Lint service ready",
		slog.Int("rules", len(enabled)),
		slog.Bool("cache", svc.store != nil),
	)
	return svc, nil
}

func openStore(cfg *config.Config, opts ServiceOptions) (*cache.Store, error) {
	var storeCfg cache.Config
	if opts.InMemoryCache {
		storeCfg = cache.InMemoryConfig()
	} else {
		path := cfg.Cache.Path
		if !filepath.IsAbs(path) && opts.WorkingDir != "" {
			path = filepath.Join(opts.WorkingDir, path)
		}
		storeCfg = cache.DefaultConfig(path)
	}
	if cfg.Cache.TTL > 0 {
		storeCfg.TTL = cfg.Cache.TTL
	}

	store, err := cache.Open(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("opening result cache: %w", err)
	}
	return store, nil
}

// Runner returns the configured lint runner.
func (s *Service) Runner() *lint.LintRunner {
	return s.runner
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Cache returns the result cache, or nil when caching is off.
func (s *Service) Cache() *cache.Store {
	return s.store
}

// Uptime returns the time since the service was built.
func (s *Service) Uptime() time.Duration {
	return time.Since(s.started)
}

// Close releases the result cache.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
