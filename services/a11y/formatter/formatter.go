// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package formatter checks that component names agree with what they extend.
//
// A Table holds two ordered lists of entries. For a pair (base, extended),
// where base is the extended tag or component and extended is the new name:
//
//   - Expected entry: base matches Match but extended does not match Want.
//     The new name hides what it is built from.
//   - Unexpected entry: extended matches Want but base does not match Match.
//     The new name claims a kind it is not built from.
//
// Every entry is evaluated in table order, expected entries first, and each
// violated entry reports once. There is no first-match short circuit, so
// one declaration can produce several findings.
package formatter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/AleutianAI/a11ylint/services/a11y/engine"
	"github.com/AleutianAI/a11ylint/services/a11y/markup"
)

// Diagnostic kinds reported by the formatter.
const (
	KindExpectedName   engine.DiagnosticKind = "ExpectedComponentName"
	KindUnexpectedName engine.DiagnosticKind = "UnexpectedComponentName"
)

// Template placeholders.
const (
	PlaceholderExtended = "{{extended}}"
	PlaceholderExpected = "{{expected}}"
)

// ErrInvalidTable is returned when a table entry does not compile.
var ErrInvalidTable = errors.New("invalid name table")

// Entry is one row of a name table.
type Entry struct {
	// Match is tested against the base name.
	Match string

	// Want is tested against the extended name. For unexpected entries its
	// first capture group is the expected suffix used in messages.
	Want string

	// Template overrides the default message of an unexpected entry.
	Template string
}

// Table is an ordered pair of entry lists.
type Table struct {
	Expected   []Entry
	Unexpected []Entry
}

type compiled struct {
	entry Entry
	match *regexp.Regexp
	want  *regexp.Regexp
}

// Finding is one violated entry.
type Finding struct {
	Kind    engine.DiagnosticKind
	Message string
}

// Formatter is a compiled Table.
//
// Thread Safety: Immutable after Compile; safe for concurrent use.
type Formatter struct {
	expected   []compiled
	unexpected []compiled
}

// Compile compiles every entry once.
func Compile(t Table) (*Formatter, error) {
	f := &Formatter{}
	var err error
	if f.expected, err = compileEntries(t.Expected); err != nil {
		return nil, err
	}
	if f.unexpected, err = compileEntries(t.Unexpected); err != nil {
		return nil, err
	}
	return f, nil
}

// MustCompile is Compile for package-level tables.
func MustCompile(t Table) *Formatter {
	f, err := Compile(t)
	if err != nil {
		panic(err)
	}
	return f
}

func compileEntries(entries []Entry) ([]compiled, error) {
	out := make([]compiled, 0, len(entries))
	for _, e := range entries {
		m, err := regexp.Compile(e.Match)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTable, e.Match, err)
		}
		w, err := regexp.Compile(e.Want)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTable, e.Want, err)
		}
		out = append(out, compiled{entry: e, match: m, want: w})
	}
	return out, nil
}

// Check evaluates (base, extended) against every entry.
//
// Description:
//
//	Empty names never produce findings. Expected entries are evaluated
//	first, then unexpected entries, each in table order.
//
// Inputs:
//
//	base - The tag or component being extended
//	extended - The name given to the result
//
// Outputs:
//
//	[]Finding - One per violated entry, in evaluation order
func (f *Formatter) Check(base, extended string) []Finding {
	if base == "" || extended == "" {
		return nil
	}

	var out []Finding
	for _, c := range f.expected {
		if c.match.MatchString(base) && !c.want.MatchString(extended) {
			out = append(out, Finding{
				Kind: KindExpectedName,
				Message: fmt.Sprintf("%s extends %s, so rename it to match the pattern %q",
					extended, base, c.entry.Want),
			})
		}
	}
	for _, c := range f.unexpected {
		m := c.want.FindStringSubmatch(extended)
		if m == nil || c.match.MatchString(base) {
			continue
		}
		expected := m[0]
		if len(m) > 1 && m[1] != "" {
			expected = m[1]
		}
		out = append(out, Finding{
			Kind:    KindUnexpectedName,
			Message: unexpectedMessage(c.entry, base, extended, expected),
		})
	}
	return out
}

func unexpectedMessage(e Entry, base, extended, expected string) string {
	if e.Template != "" {
		return strings.NewReplacer(
			PlaceholderExtended, extended,
			PlaceholderExpected, expected,
		).Replace(e.Template)
	}
	return fmt.Sprintf("%s is named like a %s but extends %s, which does not match the pattern %q; "+
		"extend a %s or remove %q from the name", extended, expected, base, e.Match, expected, expected)
}

// Handlers returns the declarator and import specifier handlers that
// report findings through ctx.
//
// Description:
//
//	A VariableDeclarator is checked when its initializer is a styled form;
//	base is the styled tag or component. An ImportSpecifier is checked when
//	it renames its import; base is the imported name.
func (f *Formatter) Handlers(ctx *engine.Context) engine.Handlers {
	tree := ctx.Tree()
	report := func(id markup.NodeID, base, extended string) {
		for _, finding := range f.Check(base, extended) {
			ctx.Report(id, finding.Kind, finding.Message)
		}
	}
	return engine.Handlers{
		markup.KindVariableDeclarator: func(id markup.NodeID) {
			n, ok := tree.At(id)
			if !ok || n.Init == markup.InitNone {
				return
			}
			report(id, n.InitName, n.Name)
		},
		markup.KindImportSpecifier: func(id markup.NodeID) {
			n, ok := tree.At(id)
			if !ok || !n.HasValue || n.Value == n.Name {
				return
			}
			report(id, n.Value, n.Name)
		},
	}
}
