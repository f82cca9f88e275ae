// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"github.com/AleutianAI/a11ylint/services/a11y/classify"
	"github.com/AleutianAI/a11ylint/services/a11y/engine"
	"github.com/AleutianAI/a11ylint/services/a11y/formatter"
	"github.com/AleutianAI/a11ylint/services/a11y/markup"
	"github.com/AleutianAI/a11ylint/services/a11y/scan"
	"github.com/AleutianAI/a11ylint/services/a11y/search"
)

// RolePresentationName is the rule identifier.
const RolePresentationName = "a11y-delegate-element-has-role-presentation"

var interactiveNames = formatter.MustCompile(formatter.Table{
	Expected: []formatter.Entry{
		{Match: `(i|I)nput$`, Want: `Input$`},
		{Match: `(t|T)extarea$`, Want: `Textarea$`},
		{Match: `(s|S)elect$`, Want: `Select$`},
		{Match: `InputFile$`, Want: `InputFile$`},
		{Match: `RadioButtonPanel$`, Want: `RadioButtonPanel$`},
		{Match: `Check(b|B)ox$`, Want: `CheckBox$`},
		{Match: `Combo(b|B)ox$`, Want: `ComboBox$`},
		{Match: `DatePicker$`, Want: `DatePicker$`},
		{Match: `DropZone$`, Want: `DropZone$`},
		{Match: `Switch$`, Want: `Switch$`},
		{Match: `SegmentedControl$`, Want: `SegmentedControl$`},
		{Match: `RightFixedNote$`, Want: `RightFixedNote$`},
		{Match: `FieldSet$`, Want: `FieldSet$`},
		{Match: `(b|B)utton$`, Want: `Button$`},
		{Match: `Anchor$`, Want: `Anchor$`},
		{Match: `Link$`, Want: `Link$`},
		{Match: `TabItem$`, Want: `TabItem$`},
		{Match: `^a$`, Want: `(Anchor|Link)$`},
		{Match: `(f|F)orm$`, Want: `Form$`},
		{Match: `ActionDialogWithTrigger$`, Want: `ActionDialogWithTrigger$`},
		{Match: `RemoteDialogTrigger$`, Want: `RemoteDialogTrigger$`},
		{Match: `RemoteTrigger(.+)Dialog$`, Want: `RemoteTrigger(.+)Dialog$`},
		{Match: `FormDialog$`, Want: `FormDialog$`},
		{Match: `Pagination$`, Want: `Pagination$`},
		{Match: `SideNav$`, Want: `SideNav$`},
		{Match: `AccordionPanel$`, Want: `AccordionPanel$`},
	},
	Unexpected: []formatter.Entry{
		{Match: `(B|^b)utton$`, Want: `(Button)$`},
		{Match: `(Anchor|^a)$`, Want: `(Anchor)$`},
		{Match: `(Link|^a)$`, Want: `(Link)$`},
	},
})

// RolePresentationRule flags event handlers on components that are not
// interactive, and role="presentation" where it hides interactivity.
//
// Description:
//
//	For each opening tag:
//	  - interactive name with role="presentation": InteractiveHasRolePresentation
//	  - non-interactive name with handlers and no override: NonInteractiveHandler
//	  - non-interactive name with handlers and the override, but no
//	    interactive descendant: RolePresentationNoInteractiveDescendant
//
// Thread Safety: Safe for concurrent use; Create holds no shared state.
type RolePresentationRule struct {
	classes *classify.Classifier
}

// NewRolePresentation builds the rule.
//
// Inputs:
//
//	opts - WithAdditionalInteractive or WithClassifier
//
// Outputs:
//
//	*RolePresentationRule - The rule
//	error - classify.ErrInvalidPattern for a bad extra pattern
func NewRolePresentation(opts ...Option) (*RolePresentationRule, error) {
	c, err := resolveClassifier(opts)
	if err != nil {
		return nil, err
	}
	return &RolePresentationRule{classes: c}, nil
}

// Name implements engine.Rule.
func (r *RolePresentationRule) Name() string {
	return RolePresentationName
}

// Description implements engine.Rule.
func (r *RolePresentationRule) Description() string {
	return "event handlers belong on interactive components or on a role=\"presentation\" wrapper around them"
}

// Severity implements engine.Rule. Findings are blocking problems.
func (r *RolePresentationRule) Severity() engine.Severity {
	return engine.SeverityError
}

// Create implements engine.Rule.
func (r *RolePresentationRule) Create(ctx *engine.Context) engine.Handlers {
	return engine.Compose(interactiveNames.Handlers(ctx), engine.Handlers{
		markup.KindOpeningTag: func(id markup.NodeID) {
			r.check(ctx, id)
		},
	})
}

func (r *RolePresentationRule) check(ctx *engine.Context, id markup.NodeID) {
	tree := ctx.Tree()
	name := tree.Name(id)
	attrs := scan.Scan(tree, id)
	pattern := r.classes.Pattern(classify.Interactive)

	if r.classes.Is(name, classify.Interactive) {
		if attrs.HasRoleOverride {
			ctx.Report(id, KindInteractiveHasRolePresentation, interactiveHasRolePresentationMessage(name, pattern))
		}
		return
	}

	if len(attrs.HandlerNames) == 0 {
		return
	}
	if !attrs.HasRoleOverride {
		ctx.Report(id, KindNonInteractiveHandler, nonInteractiveHandlerMessage(name, pattern, attrs.HandlerNames))
		return
	}
	if !search.HasInteractiveDescendant(tree, r.classes, tree.Parent(id)) {
		ctx.Report(id, KindRolePresentationNoInteractiveDescendant,
			noInteractiveDescendantMessage(name, pattern, attrs.HandlerNames))
	}
}
