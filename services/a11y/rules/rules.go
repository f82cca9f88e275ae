// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules implements the a11y rules for component markup.
//
// Two rules are provided:
//
//   - RolePresentationRule checks that event handlers sit on interactive
//     components, or on a role="presentation" wrapper around them.
//   - HeadingOutlineRule checks that headings sit inside exactly one
//     sectioning container each, and that PageHeading is unique and unwrapped.
//
// Both rules also check component names against what they extend through
// the formatter package.
package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/AleutianAI/a11ylint/services/a11y/classify"
	"github.com/AleutianAI/a11ylint/services/a11y/engine"
)

// Diagnostic kinds.
const (
	KindNonInteractiveHandler                   engine.DiagnosticKind = "NonInteractiveHandler"
	KindRolePresentationNoInteractiveDescendant engine.DiagnosticKind = "RolePresentationNoInteractiveDescendant"
	KindInteractiveHasRolePresentation          engine.DiagnosticKind = "InteractiveHasRolePresentation"
	KindDuplicatePageHeading                    engine.DiagnosticKind = "DuplicatePageHeading"
	KindRootHeadingNoOutline                    engine.DiagnosticKind = "RootHeadingNoOutline"
	KindPageHeadingNestedInSection              engine.DiagnosticKind = "PageHeadingNestedInSection"
	KindDuplicateSectionHeading                 engine.DiagnosticKind = "DuplicateSectionHeading"
	KindRedundantTagOverride                    engine.DiagnosticKind = "RedundantTagOverride"
	KindBareTagShouldExtendSemanticContainer    engine.DiagnosticKind = "BareTagShouldExtendSemanticContainer"
)

// ErrUnknownRule is returned by New for an unregistered rule name.
var ErrUnknownRule = errors.New("unknown rule")

// Option configures rule construction.
type Option func(*options)

type options struct {
	additionalInteractive []string
	classifier            *classify.Classifier
}

// WithAdditionalInteractive adds interactive name patterns.
func WithAdditionalInteractive(patterns ...string) Option {
	return func(o *options) {
		o.additionalInteractive = append(o.additionalInteractive, patterns...)
	}
}

// WithClassifier shares a pre-built classifier. It takes precedence over
// WithAdditionalInteractive.
func WithClassifier(c *classify.Classifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

func resolveClassifier(opts []Option) (*classify.Classifier, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.classifier != nil {
		return o.classifier, nil
	}
	if len(o.additionalInteractive) == 0 {
		return classify.Default(), nil
	}
	return classify.New(classify.WithAdditionalInteractive(o.additionalInteractive...))
}

// =============================================================================
// REGISTRY
// =============================================================================

// Factory builds a rule from options.
type Factory func(opts ...Option) (engine.Rule, error)

var factories = map[string]Factory{
	RolePresentationName: func(opts ...Option) (engine.Rule, error) {
		r, err := NewRolePresentation(opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	},
	HeadingOutlineName: func(opts ...Option) (engine.Rule, error) {
		r, err := NewHeadingOutline(opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	},
}

// Names returns every rule name, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds one rule by name.
func New(name string, opts ...Option) (engine.Rule, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
	}
	return f(opts...)
}

// All builds every rule in Names order.
func All(opts ...Option) ([]engine.Rule, error) {
	out := make([]engine.Rule, 0, len(factories))
	for _, name := range Names() {
		r, err := New(name, opts...)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", name, err)
		}
		out = append(out, r)
	}
	return out, nil
}
