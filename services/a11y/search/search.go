// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search walks a markup tree up to the enclosing outline container
// and down to interactive content.
package search

import (
	"github.com/AleutianAI/a11ylint/services/a11y/classify"
	"github.com/AleutianAI/a11ylint/services/a11y/markup"
	"github.com/AleutianAI/a11ylint/services/a11y/scan"
)

// HeaderSlotAttr is the dialog attribute whose content is exempt from
// outline checks.
const HeaderSlotAttr = "header"

// FindOutlineContainer walks from start up the parent chain.
//
// Description:
//
//	At each node, in order:
//	  1. The Program root, a sectioning Element, or a layout Element with a
//	     literal as/forwardedAs naming a bare sectioning tag is returned.
//	  2. A top-level heading-named VariableDeclarator or FunctionDeclaration,
//	     or a header attribute on a modeless dialog, ends the search as exempt.
//	  3. Otherwise the walk moves to the parent.
//
//	Parent ids strictly decrease, so the walk takes at most tree.Len steps.
//	A walk that falls off the tree (malformed input) reports the root.
//
// Inputs:
//
//	tree - The markup tree
//	c - Category classifier
//	start - First node examined (usually the heading element's parent)
//
// Outputs:
//
//	markup.NodeID - The container, valid only when ok is true
//	bool - False when an exemption stopped the search
func FindOutlineContainer(tree *markup.Tree, c *classify.Classifier, start markup.NodeID) (markup.NodeID, bool) {
	n := start
	for steps := 0; steps <= tree.Len() && n.Valid(); steps++ {
		switch tree.Kind(n) {
		case markup.KindProgram:
			return n, true

		case markup.KindElement:
			if isOutlineElement(tree, c, n) {
				return n, true
			}

		case markup.KindVariableDeclarator:
			decl := tree.Parent(n)
			if isTopLevel(tree, tree.Parent(decl)) && c.Is(tree.Name(n), classify.Heading) {
				return markup.NoNode, false
			}

		case markup.KindFunctionDeclaration:
			if isTopLevel(tree, tree.Parent(n)) && c.Is(tree.Name(n), classify.Heading) {
				return markup.NoNode, false
			}

		case markup.KindAttribute:
			if tree.Name(n) == HeaderSlotAttr && c.Is(tree.Name(tree.Parent(n)), classify.ModelessDialog) {
				return markup.NoNode, false
			}
		}
		n = tree.Parent(n)
	}
	return tree.Root(), true
}

func isTopLevel(tree *markup.Tree, id markup.NodeID) bool {
	switch tree.Kind(id) {
	case markup.KindProgram, markup.KindExport:
		return true
	default:
		return false
	}
}

func isOutlineElement(tree *markup.Tree, c *classify.Classifier, element markup.NodeID) bool {
	name := tree.ElementName(element)
	if c.Is(name, classify.Sectioning) {
		return true
	}
	if !c.Is(name, classify.Layout) {
		return false
	}
	for _, as := range scan.Scan(tree, tree.Opening(element)).As {
		if c.Is(as.Value, classify.BareSectioningTag) {
			return true
		}
	}
	return false
}

// HasInteractiveDescendant reports whether any Element below node is
// interactive.
//
// Description:
//
//	Only Element children are followed. Markup nested inside expressions
//	or other non-Element nodes is not examined. The walk uses an explicit
//	stack and returns on the first match.
//
// Inputs:
//
//	tree - The markup tree
//	c - Category classifier
//	node - The element whose descendants are searched (node itself is not tested)
//
// Outputs:
//
//	bool - True if an interactive descendant exists
func HasInteractiveDescendant(tree *markup.Tree, c *classify.Classifier, node markup.NodeID) bool {
	stack := appendElements(tree, nil, node)
	for steps := 0; len(stack) > 0 && steps <= tree.Len(); steps++ {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if c.Is(tree.ElementName(id), classify.Interactive) {
			return true
		}
		stack = appendElements(tree, stack, id)
	}
	return false
}

// appendElements pushes node's Element children in reverse so they pop in
// document order.
func appendElements(tree *markup.Tree, stack []markup.NodeID, node markup.NodeID) []markup.NodeID {
	children := tree.Children(node)
	for i := len(children) - 1; i >= 0; i-- {
		if tree.Kind(children[i]) == markup.KindElement {
			stack = append(stack, children[i])
		}
	}
	return stack
}
