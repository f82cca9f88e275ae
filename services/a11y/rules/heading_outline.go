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

// HeadingOutlineName is the rule identifier.
const HeadingOutlineName = "a11y-heading-in-sectioning-content"

// ignorableTags render a heading component as non-heading markup.
var ignorableTags = map[string]struct{}{
	"span":   {},
	"legend": {},
}

var sectioningNames = formatter.MustCompile(formatter.Table{
	Expected: []formatter.Entry{
		{Match: `PageHeading$`, Want: `PageHeading$`},
		{Match: `Heading$`, Want: `Heading$`},
		{Match: `^h1$`, Want: `PageHeading$`},
		{Match: `^h(|2|3|4|5|6)$`, Want: `Heading$`},
		{Match: `Article$`, Want: `Article$`},
		{Match: `Aside$`, Want: `Aside$`},
		{Match: `Nav$`, Want: `Nav$`},
		{Match: `Section$`, Want: `Section$`},
		{Match: `ModelessDialog$`, Want: `ModelessDialog$`},
		{Match: `Center$`, Want: `Center$`},
		{Match: `Reel$`, Want: `Reel$`},
		{Match: `Sidebar$`, Want: `Sidebar$`},
		{Match: `Stack$`, Want: `Stack$`},
	},
	Unexpected: []formatter.Entry{
		{Match: `(Heading|^h(1|2|3|4|5|6))$`, Want: `(Heading)$`},
		{Match: `(A|^a)rticle$`, Want: `(Article)$`, Template: unexpectedSectioningTemplate},
		{Match: `(A|^a)side$`, Want: `(Aside)$`, Template: unexpectedSectioningTemplate},
		{Match: `(N|^n)av$`, Want: `(Nav)$`, Template: unexpectedSectioningTemplate},
		{Match: `(S|^s)ection$`, Want: `(Section)$`, Template: unexpectedSectioningTemplate},
		{Match: `Center$`, Want: `(Center)$`},
		{Match: `Reel$`, Want: `(Reel)$`},
		{Match: `Sidebar$`, Want: `(Sidebar)$`},
		{Match: `Stack$`, Want: `(Stack)$`},
	},
})

// =============================================================================
// FILE STATE
// =============================================================================

// FileValidationState is the heading bookkeeping for one file.
//
// Thread Safety: Not safe for concurrent use. One instance per tree walk.
type FileValidationState struct {
	// PageHeadings are page headings in visitation order.
	PageHeadings []markup.NodeID

	claimed map[markup.NodeID]struct{}
}

// NewFileValidationState returns an empty state.
func NewFileValidationState() *FileValidationState {
	return &FileValidationState{claimed: make(map[markup.NodeID]struct{})}
}

// AddPageHeading records a page heading and returns how many are recorded.
func (s *FileValidationState) AddPageHeading(id markup.NodeID) int {
	s.PageHeadings = append(s.PageHeadings, id)
	return len(s.PageHeadings)
}

// Claim associates container with a heading. It returns false when the
// container was already claimed. Claims are never released.
func (s *FileValidationState) Claim(container markup.NodeID) bool {
	if _, ok := s.claimed[container]; ok {
		return false
	}
	s.claimed[container] = struct{}{}
	return true
}

// IsClaimed reports whether container already has a heading.
func (s *FileValidationState) IsClaimed(container markup.NodeID) bool {
	_, ok := s.claimed[container]
	return ok
}

// ClaimedCount returns the number of claimed containers.
func (s *FileValidationState) ClaimedCount() int {
	return len(s.claimed)
}

// =============================================================================
// RULE
// =============================================================================

// HeadingOutlineRule checks heading placement against sectioning containers.
//
// Description:
//
//	For each heading opening tag not rendered as span or legend, the
//	nearest outline container is found above the heading element:
//	  - exempt context: no outline finding
//	  - page heading: recorded; a second one anywhere is DuplicatePageHeading,
//	    a first one inside a container is PageHeadingNestedInSection
//	  - other heading at the root: RootHeadingNoOutline
//	  - other heading in an already claimed container: DuplicateSectionHeading
//	When none of those fired, a tag attribute is RedundantTagOverride.
//
//	Raw article/aside/nav/section tags, used directly or as a styled base,
//	are BareTagShouldExtendSemanticContainer.
//
// Thread Safety: Safe for concurrent use; state lives in each Create call.
type HeadingOutlineRule struct {
	classes *classify.Classifier
}

// NewHeadingOutline builds the rule.
func NewHeadingOutline(opts ...Option) (*HeadingOutlineRule, error) {
	c, err := resolveClassifier(opts)
	if err != nil {
		return nil, err
	}
	return &HeadingOutlineRule{classes: c}, nil
}

// Name implements engine.Rule.
func (r *HeadingOutlineRule) Name() string {
	return HeadingOutlineName
}

// Description implements engine.Rule.
func (r *HeadingOutlineRule) Description() string {
	return "headings belong inside one sectioning container each, with a single unwrapped PageHeading per file"
}

// Severity implements engine.Rule. Findings are advisory.
func (r *HeadingOutlineRule) Severity() engine.Severity {
	return engine.SeverityWarning
}

// Create implements engine.Rule.
func (r *HeadingOutlineRule) Create(ctx *engine.Context) engine.Handlers {
	state := NewFileValidationState()
	return engine.Compose(sectioningNames.Handlers(ctx), engine.Handlers{
		markup.KindVariableDeclarator: func(id markup.NodeID) {
			r.checkDeclarator(ctx, id)
		},
		markup.KindOpeningTag: func(id markup.NodeID) {
			r.checkOpeningTag(ctx, state, id)
		},
	})
}

func (r *HeadingOutlineRule) checkDeclarator(ctx *engine.Context, id markup.NodeID) {
	n, ok := ctx.Tree().At(id)
	if !ok || n.Init != markup.InitStyledTag {
		return
	}
	if r.classes.Is(n.InitName, classify.BareSectioningTag) {
		ctx.Report(id, KindBareTagShouldExtendSemanticContainer, bareTagMessage(n.InitName, true))
	}
}

func (r *HeadingOutlineRule) checkOpeningTag(ctx *engine.Context, state *FileValidationState, id markup.NodeID) {
	tree := ctx.Tree()
	name := tree.Name(id)

	if r.classes.Is(name, classify.BareSectioningTag) {
		ctx.Report(id, KindBareTagShouldExtendSemanticContainer, bareTagMessage(name, false))
		return
	}
	if !r.classes.Is(name, classify.Heading) {
		return
	}

	attrs := scan.Scan(tree, id)
	if attrs.Tag.Literal {
		if _, ok := ignorableTags[attrs.Tag.Value]; ok {
			return
		}
	}

	element := tree.Parent(id)
	container, ok := search.FindOutlineContainer(tree, r.classes, tree.Parent(element))

	reported := false
	if ok {
		reported = r.checkPlacement(ctx, state, id, name, container)
	}
	if !reported && attrs.Tag.Present() {
		ctx.Report(attrs.Tag.Node, KindRedundantTagOverride, redundantTagMessage)
	}
}

// checkPlacement applies the outline decision and reports whether it
// produced a finding.
func (r *HeadingOutlineRule) checkPlacement(ctx *engine.Context, state *FileValidationState, id markup.NodeID, name string, container markup.NodeID) bool {
	root := ctx.Tree().Root()

	if r.classes.Is(name, classify.PageHeading) {
		if state.AddPageHeading(id) > 1 {
			ctx.Report(id, KindDuplicatePageHeading, duplicatePageHeadingMessage)
			return true
		}
		if container != root {
			ctx.Report(id, KindPageHeadingNestedInSection, pageHeadingInSectionMessage)
			return true
		}
		return false
	}

	if container == root {
		ctx.Report(id, KindRootHeadingNoOutline, rootHeadingMessage)
		return true
	}
	if !state.Claim(container) {
		ctx.Report(id, KindDuplicateSectionHeading, headingMessage)
		return true
	}
	return false
}
