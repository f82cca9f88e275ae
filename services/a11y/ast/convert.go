// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/a11ylint/services/a11y/markup"
)

// styledIdent is the styled-components default import name.
const styledIdent = "styled"

// frame is one pending tree-sitter node and the markup parent it goes under.
type frame struct {
	node   *sitter.Node
	parent markup.NodeID
	attr   bool
}

// converter maps a tree-sitter syntax tree onto a markup tree.
type converter struct {
	src        []byte
	lineOffset int
	b          *markup.Builder
	stack      []frame
}

// convert builds a markup tree from a tree-sitter root.
//
// Description:
//
//	Every named node is kept so parent chains stay faithful; nodes without
//	rule-level meaning become KindOther. JSX elements become an Element plus
//	an OpeningTag (self-closing elements get one as well). Fragments carry no
//	name and become KindOther, so they are transparent to every search.
//	Comments and closing tags are dropped. The walk is iterative.
func convert(root *sitter.Node, src []byte, lineOffset int) (*markup.Tree, error) {
	c := &converter{
		src:        src,
		lineOffset: lineOffset,
		b:          markup.NewBuilder(),
	}
	program := c.b.Add(markup.NoNode, markup.Node{
		Kind: markup.KindProgram,
		Type: root.Type(),
		Span: c.span(root),
	})
	c.pushChildren(root, program)

	for len(c.stack) > 0 {
		f := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		if f.attr {
			c.attribute(f.node, f.parent)
			continue
		}
		c.node(f.node, f.parent)
	}
	return c.b.Build()
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func (c *converter) span(n *sitter.Node) markup.Span {
	s, e := n.StartPoint(), n.EndPoint()
	return markup.Span{
		Start: markup.Position{Line: int(s.Row) + 1 + c.lineOffset, Column: int(s.Column) + 1},
		End:   markup.Position{Line: int(e.Row) + 1 + c.lineOffset, Column: int(e.Column) + 1},
	}
}

// pushChildren schedules n's named children under parent in document order.
func (c *converter) pushChildren(n *sitter.Node, parent markup.NodeID) {
	count := int(n.NamedChildCount())
	for i := count - 1; i >= 0; i-- {
		child := n.NamedChild(i)
		if child == nil || skipped(child.Type()) {
			continue
		}
		c.stack = append(c.stack, frame{node: child, parent: parent})
	}
}

// pushAttributes schedules the attributes of an opening or self-closing tag.
func (c *converter) pushAttributes(n *sitter.Node, opening markup.NodeID) {
	count := int(n.NamedChildCount())
	for i := count - 1; i >= 0; i-- {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "jsx_attribute", "jsx_expression":
			c.stack = append(c.stack, frame{node: child, parent: opening, attr: true})
		}
	}
}

func skipped(typ string) bool {
	switch typ {
	case "comment", "jsx_closing_element", "html_comment":
		return true
	default:
		return false
	}
}

func (c *converter) node(n *sitter.Node, parent markup.NodeID) {
	switch n.Type() {
	case "jsx_element":
		c.element(n, parent)
		return
	case "jsx_self_closing_element":
		c.selfClosing(n, parent)
		return
	}

	mn := markup.Node{Kind: markup.KindOther, Type: n.Type(), Span: c.span(n)}
	switch n.Type() {
	case "lexical_declaration", "variable_declaration":
		mn.Kind = markup.KindDeclaration
	case "variable_declarator":
		mn.Kind = markup.KindVariableDeclarator
		mn.Name = c.identifier(n.ChildByFieldName("name"))
		mn.Init, mn.InitName = c.styledInit(n.ChildByFieldName("value"))
	case "function_declaration", "generator_function_declaration":
		mn.Kind = markup.KindFunctionDeclaration
		mn.Name = c.identifier(n.ChildByFieldName("name"))
	case "export_statement":
		mn.Kind = markup.KindExport
	case "import_statement":
		mn.Kind = markup.KindImport
	case "import_specifier":
		mn.Kind = markup.KindImportSpecifier
		imported, local := c.importNames(n)
		mn.Name = local
		mn.Value = imported
		mn.HasValue = imported != "" && imported != local
	}

	id := c.b.Add(parent, mn)
	if id.Valid() {
		c.pushChildren(n, id)
	}
}

// element converts <X ...>children</X>. A nameless opening tag is a fragment.
func (c *converter) element(n *sitter.Node, parent markup.NodeID) {
	open := n.ChildByFieldName("open_tag")
	if open == nil {
		open = firstNamedOfType(n, "jsx_opening_element")
	}
	var nameNode *sitter.Node
	if open != nil {
		nameNode = open.ChildByFieldName("name")
	}

	if nameNode == nil {
		id := c.b.Add(parent, markup.Node{Kind: markup.KindOther, Type: "jsx_fragment", Span: c.span(n)})
		if id.Valid() {
			c.pushContent(n, id)
		}
		return
	}

	name := c.elementName(nameNode)
	el := c.b.Add(parent, markup.Node{Kind: markup.KindElement, Type: n.Type(), Name: name, Span: c.span(n)})
	if !el.Valid() {
		return
	}
	op := c.b.Add(el, markup.Node{Kind: markup.KindOpeningTag, Type: open.Type(), Name: name, Span: c.span(open)})

	// Content is pushed first so attributes pop, and get ids, before it.
	c.pushContent(n, el)
	c.pushAttributes(open, op)
}

// pushContent schedules element content, skipping the tags themselves.
func (c *converter) pushContent(n *sitter.Node, parent markup.NodeID) {
	count := int(n.NamedChildCount())
	for i := count - 1; i >= 0; i-- {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "jsx_opening_element", "jsx_closing_element", "comment":
			continue
		}
		c.stack = append(c.stack, frame{node: child, parent: parent})
	}
}

func (c *converter) selfClosing(n *sitter.Node, parent markup.NodeID) {
	name := c.elementName(n.ChildByFieldName("name"))
	el := c.b.Add(parent, markup.Node{Kind: markup.KindElement, Type: n.Type(), Name: name, Span: c.span(n)})
	if !el.Valid() {
		return
	}
	op := c.b.Add(el, markup.Node{Kind: markup.KindOpeningTag, Type: n.Type(), Name: name, Span: c.span(n)})
	c.pushAttributes(n, op)
}

// attribute converts a jsx_attribute, or a spread {...props} which gets an
// empty name.
func (c *converter) attribute(n *sitter.Node, opening markup.NodeID) {
	mn := markup.Node{Kind: markup.KindAttribute, Type: n.Type(), Span: c.span(n)}

	var value *sitter.Node
	if n.Type() == "jsx_attribute" {
		count := int(n.NamedChildCount())
		if count > 0 {
			nameNode := n.NamedChild(0)
			switch nameNode.Type() {
			case "property_identifier", "identifier", "jsx_identifier":
				mn.Name = c.text(nameNode)
			}
		}
		if count > 1 {
			value = n.NamedChild(count - 1)
		}
	} else {
		value = n
	}

	if value != nil && n.Type() == "jsx_attribute" && value.Type() == "string" {
		mn.Value = c.stringContent(value)
		mn.HasValue = true
		value = nil
	}

	id := c.b.Add(opening, mn)
	if !id.Valid() || value == nil {
		return
	}
	if value == n {
		c.pushChildren(n, id)
		return
	}
	c.stack = append(c.stack, frame{node: value, parent: id})
}

// elementName returns a plain tag identifier, or "" for member and
// namespaced names.
func (c *converter) elementName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier", "jsx_identifier", "property_identifier", "type_identifier":
		return c.text(n)
	default:
		return ""
	}
}

func (c *converter) identifier(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier", "property_identifier", "type_identifier":
		return c.text(n)
	default:
		return ""
	}
}

func (c *converter) stringContent(n *sitter.Node) string {
	count := int(n.NamedChildCount())
	if count == 1 && n.NamedChild(0).Type() == "string_fragment" {
		return c.text(n.NamedChild(0))
	}
	raw := c.text(n)
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// importNames returns (imported, local) for an import specifier.
func (c *converter) importNames(n *sitter.Node) (string, string) {
	name := c.text(n.ChildByFieldName("name"))
	alias := c.text(n.ChildByFieldName("alias"))
	if name == "" {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() != "identifier" {
				continue
			}
			if name == "" {
				name = c.text(child)
			} else {
				alias = c.text(child)
			}
		}
	}
	if alias == "" {
		return name, name
	}
	return name, alias
}

// styledInit recognizes styled initializers.
//
//	styled.x, styled.x`...`, styled.x.attrs(...)`...`  -> InitStyledTag, "x"
//	styled(X), styled(X)`...`, styled(X).attrs(...)`...` -> InitStyledComponent, "X"
func (c *converter) styledInit(n *sitter.Node) (markup.InitKind, string) {
	for depth := 0; n != nil && depth < 8; depth++ {
		switch n.Type() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			if n.NamedChildCount() == 0 {
				return markup.InitNone, ""
			}
			n = n.NamedChild(0)

		case "call_expression":
			fn := n.ChildByFieldName("function")
			args := n.ChildByFieldName("arguments")
			if fn == nil {
				return markup.InitNone, ""
			}
			if args != nil && args.Type() == "template_string" {
				n = fn
				continue
			}
			if fn.Type() == "identifier" && c.text(fn) == styledIdent {
				return markup.InitStyledComponent, c.componentRef(args)
			}
			if fn.Type() == "member_expression" && isConfigCall(c.text(fn.ChildByFieldName("property"))) {
				n = fn.ChildByFieldName("object")
				continue
			}
			return markup.InitNone, ""

		case "member_expression":
			obj := n.ChildByFieldName("object")
			if obj != nil && obj.Type() == "identifier" && c.text(obj) == styledIdent {
				return markup.InitStyledTag, c.text(n.ChildByFieldName("property"))
			}
			return markup.InitNone, ""

		default:
			return markup.InitNone, ""
		}
	}
	return markup.InitNone, ""
}

func isConfigCall(property string) bool {
	return property == "attrs" || property == "withConfig"
}

// componentRef returns the first argument of styled(...) when it names a
// component.
func (c *converter) componentRef(args *sitter.Node) string {
	if args == nil || args.NamedChildCount() == 0 {
		return ""
	}
	arg := args.NamedChild(0)
	switch arg.Type() {
	case "identifier":
		return c.text(arg)
	case "member_expression":
		return strings.TrimSpace(c.text(arg))
	case "string":
		return c.stringContent(arg)
	default:
		return ""
	}
}

func firstNamedOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child != nil && child.Type() == typ {
			return child
		}
	}
	return nil
}
