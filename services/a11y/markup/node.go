// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package markup holds the read-only component markup tree that the a11y
// rules inspect.
//
// Nodes live in a flat arena and are addressed by NodeID. A node's parent
// always has a smaller NodeID than the node itself, so every parent chain
// is strictly decreasing and ends at the Program root. Search algorithms
// can therefore bound their walks by Tree.Len without cycle detection.
package markup

import "fmt"

// NodeID addresses a node inside a Tree.
type NodeID int32

// NoNode is the absent node. Parent(root) and Opening(non-element) return it.
const NoNode NodeID = -1

// Valid reports whether id refers to a real node slot.
func (id NodeID) Valid() bool {
	return id >= 0
}

// =============================================================================
// NODE KIND
// =============================================================================

// Kind is the closed set of node variants the rules care about.
//
// Every front-end node that does not map to one of these becomes KindOther,
// which keeps the parent chain intact without giving it any meaning.
type Kind uint8

const (
	// KindOther is any node without rule-level meaning.
	KindOther Kind = iota

	// KindProgram is the compilation unit root.
	KindProgram

	// KindElement is a markup element. Its opening tag is reachable via Opening.
	KindElement

	// KindOpeningTag carries the element name and its attribute list.
	KindOpeningTag

	// KindAttribute is a single attribute on an opening tag.
	KindAttribute

	// KindVariableDeclarator is one binding in a variable declaration.
	KindVariableDeclarator

	// KindFunctionDeclaration is a named function statement.
	KindFunctionDeclaration

	// KindDeclaration is a variable declaration statement owning declarators.
	KindDeclaration

	// KindExport is an export statement.
	KindExport

	// KindImport is an import statement.
	KindImport

	// KindImportSpecifier is one named import binding.
	KindImportSpecifier

	kindCount
)

// KindCount is the number of defined kinds.
const KindCount = int(kindCount)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindProgram:
		return "program"
	case KindElement:
		return "element"
	case KindOpeningTag:
		return "opening_tag"
	case KindAttribute:
		return "attribute"
	case KindVariableDeclarator:
		return "variable_declarator"
	case KindFunctionDeclaration:
		return "function_declaration"
	case KindDeclaration:
		return "declaration"
	case KindExport:
		return "export"
	case KindImport:
		return "import"
	case KindImportSpecifier:
		return "import_specifier"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// InitKind describes what a variable declarator's initializer extends.
type InitKind uint8

const (
	// InitNone means the initializer is absent or not a styled form.
	InitNone InitKind = iota

	// InitStyledTag is styled.x, styled.x`...` or styled.x.attrs(...)`...`.
	InitStyledTag

	// InitStyledComponent is styled(X) and its tagged template forms.
	InitStyledComponent
)

// String returns the initializer form name.
func (k InitKind) String() string {
	switch k {
	case InitNone:
		return "none"
	case InitStyledTag:
		return "styled_tag"
	case InitStyledComponent:
		return "styled_component"
	default:
		return fmt.Sprintf("init(%d)", uint8(k))
	}
}

// =============================================================================
// POSITIONS
// =============================================================================

// Position is a 1-indexed line and column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span is the source range of a node.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// =============================================================================
// NODE
// =============================================================================

// Node is one arena slot.
//
// Thread Safety: Immutable once the owning Tree has been built.
type Node struct {
	// Kind is the variant tag.
	Kind Kind

	// Type is the front-end's own node type (e.g. "jsx_element"), kept for
	// debugging and logging only.
	Type string

	// Name is the identifier: element name for Element and OpeningTag,
	// attribute name, declared binding name, or local import name.
	// Empty when the identifier is missing or not a plain identifier.
	Name string

	// Value is the literal value of an Attribute, or the imported name of an
	// ImportSpecifier. Only meaningful when HasValue is true.
	Value    string
	HasValue bool

	// Init and InitName describe a VariableDeclarator's styled initializer.
	Init     InitKind
	InitName string

	// Parent is NoNode only for the Program root.
	Parent NodeID

	// Opening is the OpeningTag of an Element, NoNode for every other kind.
	Opening NodeID

	// Children are ordered child nodes. For an Element these are its content
	// children; the opening tag is held in Opening instead.
	Children []NodeID

	// Attributes are the ordered attributes of an OpeningTag.
	Attributes []NodeID

	Span Span
}
