// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package markup

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Builder.Build.
var (
	// ErrNoProgram indicates the first node added was not a Program root.
	ErrNoProgram = errors.New("tree has no program root")

	// ErrInvalidParent indicates a node referenced a parent that does not exist.
	ErrInvalidParent = errors.New("invalid parent")

	// ErrMisplacedNode indicates a node kind was attached under a parent
	// that cannot own it.
	ErrMisplacedNode = errors.New("misplaced node")

	// ErrMissingOpeningTag indicates an Element was built without an opening tag.
	ErrMissingOpeningTag = errors.New("element has no opening tag")
)

// =============================================================================
// TREE
// =============================================================================

// Tree is a built, read-only markup tree.
//
// Accessors never panic on out-of-range ids: they return the zero answer
// (KindOther, empty name, NoNode), so a malformed reference fails closed.
//
// Thread Safety: Safe for concurrent reads.
type Tree struct {
	nodes []Node
}

// Root returns the Program root. It is always NodeID 0.
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) get(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, false
	}
	return &t.nodes[id], true
}

// At returns a copy of the node. ok is false for an unknown id.
func (t *Tree) At(id NodeID) (Node, bool) {
	n, ok := t.get(id)
	if !ok {
		return Node{Parent: NoNode, Opening: NoNode}, false
	}
	return *n, true
}

// Kind returns the node kind, KindOther for an unknown id.
func (t *Tree) Kind(id NodeID) Kind {
	if n, ok := t.get(id); ok {
		return n.Kind
	}
	return KindOther
}

// Name returns the node identifier, "" for an unknown id.
func (t *Tree) Name(id NodeID) string {
	if n, ok := t.get(id); ok {
		return n.Name
	}
	return ""
}

// Value returns the literal value and whether one is present.
func (t *Tree) Value(id NodeID) (string, bool) {
	if n, ok := t.get(id); ok && n.HasValue {
		return n.Value, true
	}
	return "", false
}

// Parent returns the parent id, NoNode for the root or an unknown id.
func (t *Tree) Parent(id NodeID) NodeID {
	if n, ok := t.get(id); ok {
		return n.Parent
	}
	return NoNode
}

// Opening returns the OpeningTag owned by an Element, NoNode otherwise.
func (t *Tree) Opening(id NodeID) NodeID {
	if n, ok := t.get(id); ok && n.Kind == KindElement {
		return n.Opening
	}
	return NoNode
}

// Children returns the ordered children. The slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	if n, ok := t.get(id); ok {
		return n.Children
	}
	return nil
}

// Attributes returns the ordered attributes of an OpeningTag.
func (t *Tree) Attributes(id NodeID) []NodeID {
	if n, ok := t.get(id); ok {
		return n.Attributes
	}
	return nil
}

// Span returns the node's source range.
func (t *Tree) Span(id NodeID) Span {
	if n, ok := t.get(id); ok {
		return n.Span
	}
	return Span{}
}

// ElementName returns the name on an Element's opening tag.
func (t *Tree) ElementName(element NodeID) string {
	return t.Name(t.Opening(element))
}

// Walk visits every node in document pre-order.
//
// Description:
//
//	An Element is visited before its opening tag, the opening tag before its
//	attributes, and the attributes before the element's content children.
//	The walk uses an explicit stack, so deep trees cannot overflow the
//	goroutine stack.
//
// Inputs:
//
//	visit - Called once per node
func (t *Tree) Walk(visit func(NodeID)) {
	if len(t.nodes) == 0 {
		return
	}
	stack := []NodeID{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(id)

		n := &t.nodes[id]
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
		for i := len(n.Attributes) - 1; i >= 0; i-- {
			stack = append(stack, n.Attributes[i])
		}
		if n.Opening.Valid() {
			stack = append(stack, n.Opening)
		}
	}
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder assembles a Tree node by node.
//
// Description:
//
//	The first node must be the Program root with parent NoNode. Every later
//	node names an existing parent, which guarantees an acyclic tree.
//	Placement follows the node kind: an OpeningTag becomes its Element's
//	Opening, an Attribute joins its OpeningTag's attribute list, anything
//	else is appended to the parent's children. The first placement error is
//	kept and returned by Build; later Add calls become no-ops.
//
// Example:
//
//	b := markup.NewBuilder()
//	root := b.Add(markup.NoNode, markup.Node{Kind: markup.KindProgram})
//	el := b.Add(root, markup.Node{Kind: markup.KindElement, Name: "Section"})
//	b.Add(el, markup.Node{Kind: markup.KindOpeningTag, Name: "Section"})
//	tree, err := b.Build()
//
// Thread Safety: Not safe for concurrent use.
type Builder struct {
	nodes []Node
	err   error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make([]Node, 0, 64)}
}

// Add appends n under parent and returns its id, or NoNode after an error.
func (b *Builder) Add(parent NodeID, n Node) NodeID {
	if b.err != nil {
		return NoNode
	}

	id := NodeID(len(b.nodes))
	n.Parent = parent
	n.Opening = NoNode
	n.Children = nil
	n.Attributes = nil

	if id == 0 {
		if n.Kind != KindProgram || parent != NoNode {
			b.err = ErrNoProgram
			return NoNode
		}
		b.nodes = append(b.nodes, n)
		return id
	}

	if n.Kind == KindProgram {
		b.err = fmt.Errorf("%w: second program root", ErrMisplacedNode)
		return NoNode
	}
	if parent < 0 || int(parent) >= len(b.nodes) {
		b.err = fmt.Errorf("%w: %d", ErrInvalidParent, parent)
		return NoNode
	}

	p := &b.nodes[parent]
	switch n.Kind {
	case KindOpeningTag:
		if p.Kind != KindElement || p.Opening.Valid() {
			b.err = fmt.Errorf("%w: opening tag under %s", ErrMisplacedNode, p.Kind)
			return NoNode
		}
		p.Opening = id
	case KindAttribute:
		if p.Kind != KindOpeningTag {
			b.err = fmt.Errorf("%w: attribute under %s", ErrMisplacedNode, p.Kind)
			return NoNode
		}
		p.Attributes = append(p.Attributes, id)
	default:
		p.Children = append(p.Children, id)
	}

	b.nodes = append(b.nodes, n)
	return id
}

// Build validates and returns the tree. The builder must not be reused.
func (b *Builder) Build() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.nodes) == 0 {
		return nil, ErrNoProgram
	}
	for i := range b.nodes {
		n := &b.nodes[i]
		if n.Kind == KindElement && !n.Opening.Valid() {
			return nil, fmt.Errorf("%w: node %d", ErrMissingOpeningTag, i)
		}
	}
	t := &Tree{nodes: b.nodes}
	b.nodes = nil
	return t, nil
}
