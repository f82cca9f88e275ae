// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package markuptest builds markup trees by hand for rule tests.
package markuptest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/markup"
)

// Attr describes an attribute to attach to an opening tag.
type Attr struct {
	Name    string
	Value   string
	Literal bool
}

// Lit is an attribute with a string literal value.
func Lit(name, value string) Attr {
	return Attr{Name: name, Value: value, Literal: true}
}

// Expr is an attribute whose value is not a literal, e.g. onClick={fn}.
func Expr(name string) Attr {
	return Attr{Name: name}
}

// Doc wraps a markup.Builder with element-level helpers.
type Doc struct {
	b        *markup.Builder
	root     markup.NodeID
	openings map[markup.NodeID]markup.NodeID
	line     int
}

// New starts a document with a Program root.
func New() *Doc {
	b := markup.NewBuilder()
	d := &Doc{b: b, openings: make(map[markup.NodeID]markup.NodeID)}
	d.root = b.Add(markup.NoNode, markup.Node{Kind: markup.KindProgram, Type: "program"})
	return d
}

// Root returns the Program id.
func (d *Doc) Root() markup.NodeID {
	return d.root
}

func (d *Doc) span() markup.Span {
	d.line++
	return markup.Span{
		Start: markup.Position{Line: d.line, Column: 1},
		End:   markup.Position{Line: d.line, Column: 2},
	}
}

// Node adds a bare node of any kind.
func (d *Doc) Node(parent markup.NodeID, kind markup.Kind, name string) markup.NodeID {
	return d.b.Add(parent, markup.Node{Kind: kind, Name: name, Span: d.span()})
}

// Element adds an element, its opening tag and the given attributes.
// It returns the element id.
func (d *Doc) Element(parent markup.NodeID, name string, attrs ...Attr) markup.NodeID {
	el := d.b.Add(parent, markup.Node{Kind: markup.KindElement, Type: "jsx_element", Name: name, Span: d.span()})
	op := d.b.Add(el, markup.Node{Kind: markup.KindOpeningTag, Type: "jsx_opening_element", Name: name, Span: d.span()})
	d.openings[el] = op
	for _, a := range attrs {
		d.Attr(op, a)
	}
	return el
}

// OpeningOf returns the opening tag added for element.
func (d *Doc) OpeningOf(element markup.NodeID) markup.NodeID {
	if op, ok := d.openings[element]; ok {
		return op
	}
	return markup.NoNode
}

// Attr appends an attribute to an opening tag and returns its id.
func (d *Doc) Attr(opening markup.NodeID, a Attr) markup.NodeID {
	return d.b.Add(opening, markup.Node{
		Kind:     markup.KindAttribute,
		Type:     "jsx_attribute",
		Name:     a.Name,
		Value:    a.Value,
		HasValue: a.Literal,
		Span:     d.span(),
	})
}

// Declarator adds a declaration statement holding one declarator and
// returns the declarator id.
func (d *Doc) Declarator(parent markup.NodeID, name string, init markup.InitKind, initName string) markup.NodeID {
	decl := d.b.Add(parent, markup.Node{Kind: markup.KindDeclaration, Type: "lexical_declaration", Span: d.span()})
	return d.b.Add(decl, markup.Node{
		Kind:     markup.KindVariableDeclarator,
		Type:     "variable_declarator",
		Name:     name,
		Init:     init,
		InitName: initName,
		Span:     d.span(),
	})
}

// ImportSpecifier adds `import { imported as local }` and returns the specifier id.
func (d *Doc) ImportSpecifier(imported, local string) markup.NodeID {
	imp := d.b.Add(d.root, markup.Node{Kind: markup.KindImport, Type: "import_statement", Span: d.span()})
	return d.b.Add(imp, markup.Node{
		Kind:     markup.KindImportSpecifier,
		Type:     "import_specifier",
		Name:     local,
		Value:    imported,
		HasValue: imported != local,
		Span:     d.span(),
	})
}

// Build finishes the tree and fails the test on a builder error.
func (d *Doc) Build(t testing.TB) *markup.Tree {
	t.Helper()
	tree, err := d.b.Build()
	require.NoError(t, err)
	return tree
}
