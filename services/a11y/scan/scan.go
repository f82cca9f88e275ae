// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scan reads the attributes of an opening tag that the a11y rules
// care about.
package scan

import (
	"regexp"

	"github.com/AleutianAI/a11ylint/services/a11y/markup"
)

// HandlerPattern matches user-input event handler attribute names.
const HandlerPattern = `^on(Change|Input|Focus|Blur|(Double)?Click|Key(Down|Up|Press)|Mouse(Enter|Over|Down|Up|Leave)|Select|Submit)$`

var (
	handlerRegex = regexp.MustCompile(HandlerPattern)
	asRegex      = regexp.MustCompile(`^(as|forwardedAs)$`)
)

// Attribute names with fixed meaning.
const (
	RoleAttr         = "role"
	RolePresentation = "presentation"
	TagAttr          = "tag"
)

// IsHandlerName reports whether name is a user-input event handler attribute.
func IsHandlerName(name string) bool {
	return name != "" && handlerRegex.MatchString(name)
}

// IsAsName reports whether name is as or forwardedAs.
func IsAsName(name string) bool {
	return name != "" && asRegex.MatchString(name)
}

// AttrValue is a located attribute occurrence.
type AttrValue struct {
	// Node is the attribute node, NoNode when the attribute is absent.
	Node markup.NodeID

	// Value is the string literal value. Only set when Literal is true.
	Value   string
	Literal bool
}

// Present reports whether the attribute was found.
func (v AttrValue) Present() bool {
	return v.Node.Valid()
}

// Result is the scanned view of one opening tag.
type Result struct {
	// HandlerNames are matched handler attributes in source order.
	HandlerNames []string

	// HasRoleOverride is true when role="presentation" is present.
	HasRoleOverride bool

	// Tag is the first attribute named tag.
	Tag AttrValue

	// As holds every as/forwardedAs attribute with a literal value.
	As []AttrValue
}

// AsValue returns the first literal as/forwardedAs value.
func (r Result) AsValue() (string, bool) {
	if len(r.As) == 0 {
		return "", false
	}
	return r.As[0].Value, true
}

// Scan reads the attribute list of an OpeningTag.
//
// Description:
//
//	Attributes without a name (spread attributes) are skipped. Only string
//	literal values count for role, tag and as; an expression value such as
//	role={r} never counts as an override.
//
// Inputs:
//
//	tree - The markup tree
//	opening - An OpeningTag node; any other kind yields an empty Result
//
// Outputs:
//
//	Result - The scanned attributes
func Scan(tree *markup.Tree, opening markup.NodeID) Result {
	res := Result{Tag: AttrValue{Node: markup.NoNode}}
	if tree.Kind(opening) != markup.KindOpeningTag {
		return res
	}

	for _, attr := range tree.Attributes(opening) {
		name := tree.Name(attr)
		if name == "" {
			continue
		}
		value, literal := tree.Value(attr)

		switch {
		case IsHandlerName(name):
			res.HandlerNames = append(res.HandlerNames, name)
		case name == RoleAttr:
			if literal && value == RolePresentation {
				res.HasRoleOverride = true
			}
		case name == TagAttr:
			if !res.Tag.Present() {
				res.Tag = AttrValue{Node: attr, Value: value, Literal: literal}
			}
		case IsAsName(name):
			if literal {
				res.As = append(res.As, AttrValue{Node: attr, Value: value, Literal: true})
			}
		}
	}
	return res
}
