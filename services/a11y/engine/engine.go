// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine drives rules over a markup tree.
//
// A Rule registers per-kind handlers through Create. Run walks the tree
// once in document pre-order and calls every registered handler for each
// node. Handlers report findings through their Context; reports accumulate
// in visitation order.
//
// # Isolation
//
// A panic inside one handler is recovered and logged. It costs that one
// handler call only: the remaining handlers for the node, and the rest of
// the walk, still run.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/AleutianAI/a11ylint/services/a11y/markup"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity ranks a finding.
type Severity int

const (
	// SeverityInfo is informational.
	SeverityInfo Severity = iota

	// SeverityWarning is an advisory suggestion that does not block.
	SeverityWarning

	// SeverityError is a blocking problem.
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// SeverityFromString parses a severity name. Unknown values become SeverityWarning.
func SeverityFromString(s string) Severity {
	switch s {
	case "error", "err", "problem":
		return SeverityError
	case "warning", "warn", "suggestion":
		return SeverityWarning
	case "info", "hint":
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(b []byte) error {
	*s = SeverityFromString(string(b))
	return nil
}

// =============================================================================
// DIAGNOSTIC
// =============================================================================

// DiagnosticKind tags what a finding is about.
type DiagnosticKind string

// Diagnostic is a single finding bound to a node.
type Diagnostic struct {
	// Rule is the reporting rule's name.
	Rule string `json:"rule"`

	// Kind identifies the violated convention.
	Kind DiagnosticKind `json:"kind"`

	// Severity is the rule's severity.
	Severity Severity `json:"severity"`

	// Node is the node the finding is attached to.
	Node markup.NodeID `json:"node"`

	// Span is the node's source range.
	Span markup.Span `json:"span"`

	// Message is the human-readable explanation.
	Message string `json:"message"`
}

// =============================================================================
// RULE CONTRACT
// =============================================================================

// Handler is called once per node of a registered kind.
type Handler func(id markup.NodeID)

// Handlers maps node kinds to the handler for that kind.
type Handlers map[markup.Kind]Handler

// Rule is a checker that runs during the tree walk.
type Rule interface {
	// Name is the stable rule identifier used in results and policies.
	Name() string

	// Description is a one-line summary.
	Description() string

	// Severity is the severity of every finding this rule reports.
	Severity() Severity

	// Create is called once per tree. Any per-file state belongs in the
	// closures it returns, so nothing leaks between trees.
	Create(ctx *Context) Handlers
}

// Context is what a rule sees during one tree walk.
//
// Thread Safety: Not safe for concurrent use. One walk, one goroutine.
type Context struct {
	tree     *markup.Tree
	filePath string
	rule     string
	severity Severity
	sink     *[]Diagnostic
}

// NewContext creates a context that appends into sink.
func NewContext(tree *markup.Tree, filePath string, rule Rule, sink *[]Diagnostic) *Context {
	return &Context{
		tree:     tree,
		filePath: filePath,
		rule:     rule.Name(),
		severity: rule.Severity(),
		sink:     sink,
	}
}

// Tree returns the tree being walked.
func (c *Context) Tree() *markup.Tree {
	return c.tree
}

// FilePath returns the path of the file the tree came from.
func (c *Context) FilePath() string {
	return c.filePath
}

// RuleName returns the owning rule's name.
func (c *Context) RuleName() string {
	return c.rule
}

// Report appends a finding on node.
func (c *Context) Report(node markup.NodeID, kind DiagnosticKind, message string) {
	*c.sink = append(*c.sink, Diagnostic{
		Rule:     c.rule,
		Kind:     kind,
		Severity: c.severity,
		Node:     node,
		Span:     c.tree.Span(node),
		Message:  message,
	})
}

// Compose merges handler sets. Where both define a kind, base runs first
// and then extra, so neither replaces the other.
func Compose(base, extra Handlers) Handlers {
	out := make(Handlers, len(base)+len(extra))
	for k, h := range base {
		out[k] = h
	}
	for k, h := range extra {
		prev, ok := out[k]
		if !ok {
			out[k] = h
			continue
		}
		next := h
		out[k] = func(id markup.NodeID) {
			prev(id)
			next(id)
		}
	}
	return out
}

// =============================================================================
// DRIVER
// =============================================================================

type activeRule struct {
	name     string
	handlers [markup.KindCount]Handler
}

// Run walks tree once and returns every finding in visitation order.
//
// Description:
//
//	Create is called for each rule before the walk. A rule whose Create
//	panics is skipped. For each visited node, the handlers registered for
//	its kind run in rule order.
//
// Inputs:
//
//	tree - The markup tree; nil yields no findings
//	filePath - Source path, exposed to rules through Context
//	rules - Rules to run
//
// Outputs:
//
//	[]Diagnostic - Findings in visitation order
//
// Thread Safety: Safe for concurrent use with distinct trees.
func Run(tree *markup.Tree, filePath string, rules []Rule) []Diagnostic {
	if tree == nil || tree.Len() == 0 {
		return nil
	}

	diags := make([]Diagnostic, 0)
	active := make([]activeRule, 0, len(rules))
	for _, r := range rules {
		handlers, ok := create(r, NewContext(tree, filePath, r, &diags))
		if !ok {
			continue
		}
		ar := activeRule{name: r.Name()}
		for kind, h := range handlers {
			if int(kind) < markup.KindCount && h != nil {
				ar.handlers[kind] = h
			}
		}
		active = append(active, ar)
	}

	tree.Walk(func(id markup.NodeID) {
		kind := tree.Kind(id)
		for i := range active {
			if h := active[i].handlers[kind]; h != nil {
				invoke(active[i].name, filePath, id, kind, h)
			}
		}
	})
	return diags
}

func create(r Rule, ctx *Context) (handlers Handlers, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Rule setup panicked",
				slog.String("rule", r.Name()),
				slog.String("file", ctx.FilePath()),
				slog.String("panic", fmt.Sprint(rec)),
			)
			handlers, ok = nil, false
		}
	}()
	return r.Create(ctx), true
}

func invoke(rule, filePath string, id markup.NodeID, kind markup.Kind, h Handler) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Rule handler panicked",
				slog.String("rule", rule),
				slog.String("file", filePath),
				slog.String("kind", kind.String()),
				slog.Int("node", int(id)),
				slog.String("panic", fmt.Sprint(rec)),
			)
		}
	}()
	h(id)
}
