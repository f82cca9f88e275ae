// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/rules"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, rules.Names(), cfg.RuleNames())
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
rules:
  disabled: [a11y-delegate-element-has-role-presentation]
  additional_interactive_component_regex: ["^Clickable", "Toggle$"]
policy:
  block_on: [a11y-heading-in-sectioning-content/DuplicatePageHeading]
cache:
  enabled: true
  ttl: 24h
server:
  addr: 0.0.0.0:9000
`))
	require.NoError(t, err)

	assert.Equal(t, []string{rules.HeadingOutlineName}, cfg.RuleNames())
	assert.Equal(t, []string{"^Clickable", "Toggle$"}, cfg.Rules.AdditionalInteractive)
	assert.Equal(t, []string{"a11y-heading-in-sectioning-content/DuplicatePageHeading"}, cfg.Policy.BlockOn)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, DefaultConfig().Cache.Path, cfg.Cache.Path)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "rulez: {}\n"},
		{"bad regex", "rules:\n  additional_interactive_component_regex: ['(']\n"},
		{"empty regex", "rules:\n  additional_interactive_component_regex: ['']\n"},
		{"unknown rule", "rules:\n  enabled: [no-such-rule]\n"},
		{"negative concurrency", "concurrency: -1\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"otlp without endpoint", "telemetry:\n  traces: otlp\n"},
		{"cache without path", "cache:\n  enabled: true\n  path: ''\n"},
		{"bad addr", "server:\n  addr: nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestBuildRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.Enabled = []string{rules.RolePresentationName}
	cfg.Rules.AdditionalInteractive = []string{"^Clickable"}

	built, err := cfg.BuildRules()
	require.NoError(t, err)
	require.Len(t, built, 1)
	assert.Equal(t, rules.RolePresentationName, built[0].Name())
}

func TestCacheMaterial_ChangesWithRuleSettings(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	assert.Equal(t, a.CacheMaterial(), b.CacheMaterial())

	b.Policy.Ignore = []string{"x"}
	assert.NotEqual(t, a.CacheMaterial(), b.CacheMaterial())

	c := DefaultConfig()
	c.Server.Addr = "127.0.0.1:1"
	assert.Equal(t, a.CacheMaterial(), c.CacheMaterial(), "server settings do not affect results")
}

func TestDiscoverAndResolve(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, path, err := Resolve("", nested)
	require.NoError(t, err)
	assert.Equal(t, "", path)
	assert.Equal(t, DefaultConfig(), cfg)

	file := filepath.Join(root, ".a11ylint.yml")
	require.NoError(t, os.WriteFile(file, []byte("concurrency: 3\n"), 0o644))

	found, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, file, found)

	cfg, path, err = Resolve("", nested)
	require.NoError(t, err)
	assert.Equal(t, file, path)
	assert.Equal(t, 3, cfg.Concurrency)

	_, _, err = Resolve(filepath.Join(root, "missing.yaml"), nested)
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", ".a11ylint.yaml")
	cfg := DefaultConfig()
	cfg.Concurrency = 4

	require.NoError(t, Write(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
