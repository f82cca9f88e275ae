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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/engine"
	"github.com/AleutianAI/a11ylint/services/a11y/formatter"
	"github.com/AleutianAI/a11ylint/services/a11y/markup"
	"github.com/AleutianAI/a11ylint/services/a11y/markup/markuptest"
)

func newHeadingOutline(t *testing.T) *HeadingOutlineRule {
	t.Helper()
	r, err := NewHeadingOutline()
	require.NoError(t, err)
	return r
}

func TestHeadingOutline_Placement(t *testing.T) {
	tests := []struct {
		name  string
		build func(d *markuptest.Doc)
		want  []engine.DiagnosticKind
	}{
		{
			name: "distinct sections",
			build: func(d *markuptest.Doc) {
				d.Element(d.Element(d.Root(), "Section"), "Heading")
				d.Element(d.Element(d.Root(), "Section"), "Heading")
			},
		},
		{
			name: "same section twice",
			build: func(d *markuptest.Doc) {
				s := d.Element(d.Root(), "Section")
				d.Element(s, "Heading")
				d.Element(d.Element(s, "div"), "Heading")
			},
			want: []engine.DiagnosticKind{KindDuplicateSectionHeading},
		},
		{
			name: "nested sections each claimed once",
			build: func(d *markuptest.Doc) {
				outer := d.Element(d.Root(), "Article")
				d.Element(outer, "Heading")
				inner := d.Element(outer, "Aside")
				d.Element(inner, "Heading")
			},
		},
		{
			name: "heading at root",
			build: func(d *markuptest.Doc) {
				d.Element(d.Element(d.Root(), "div"), "Heading")
			},
			want: []engine.DiagnosticKind{KindRootHeadingNoOutline},
		},
		{
			name: "raw h2 at root",
			build: func(d *markuptest.Doc) {
				d.Element(d.Root(), "h2")
			},
			want: []engine.DiagnosticKind{KindRootHeadingNoOutline},
		},
		{
			name: "page heading at root",
			build: func(d *markuptest.Doc) {
				d.Element(d.Root(), "PageHeading")
			},
		},
		{
			name: "page heading twice",
			build: func(d *markuptest.Doc) {
				d.Element(d.Root(), "PageHeading")
				d.Element(d.Element(d.Root(), "Section"), "PageHeading")
			},
			want: []engine.DiagnosticKind{KindDuplicatePageHeading},
		},
		{
			name: "page heading inside section",
			build: func(d *markuptest.Doc) {
				d.Element(d.Element(d.Root(), "Section"), "PageHeading")
			},
			want: []engine.DiagnosticKind{KindPageHeadingNestedInSection},
		},
		{
			name: "page heading does not claim its section",
			build: func(d *markuptest.Doc) {
				s := d.Element(d.Root(), "Section")
				d.Element(s, "PageHeading")
				d.Element(s, "Heading")
			},
			want: []engine.DiagnosticKind{KindPageHeadingNestedInSection},
		},
		{
			name: "layout with as section is a container",
			build: func(d *markuptest.Doc) {
				stack := d.Element(d.Root(), "Stack", markuptest.Lit("as", "section"))
				d.Element(stack, "Heading")
				d.Element(stack, "Heading")
			},
			want: []engine.DiagnosticKind{KindDuplicateSectionHeading},
		},
		{
			name: "layout without as is not a container",
			build: func(d *markuptest.Doc) {
				d.Element(d.Element(d.Root(), "Stack"), "Heading")
			},
			want: []engine.DiagnosticKind{KindRootHeadingNoOutline},
		},
		{
			name: "heading component definition is exempt",
			build: func(d *markuptest.Doc) {
				decl := d.Declarator(d.Root(), "CardHeading", markup.InitNone, "")
				d.Element(decl, "Heading")
			},
		},
		{
			name: "modeless dialog header is exempt",
			build: func(d *markuptest.Doc) {
				dialog := d.Element(d.Root(), "ModelessDialog")
				header := d.Attr(d.OpeningOf(dialog), markuptest.Expr("header"))
				d.Element(header, "Heading")
			},
		},
		{
			name: "span and legend tags are not headings",
			build: func(d *markuptest.Doc) {
				d.Element(d.Root(), "Heading", markuptest.Lit("tag", "span"))
				d.Element(d.Root(), "Heading", markuptest.Lit("tag", "legend"))
			},
		},
		{
			name: "heading that is itself named like a section",
			build: func(d *markuptest.Doc) {
				s := d.Element(d.Root(), "Section")
				d.Element(s, "SectionHeading")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := markuptest.New()
			tt.build(doc)
			diags := runRule(t, newHeadingOutline(t), doc.Build(t))
			if tt.want == nil {
				assert.Empty(t, diags)
				return
			}
			assert.Equal(t, tt.want, diagKinds(diags))
		})
	}
}

func TestHeadingOutline_DiagnosticTargets(t *testing.T) {
	doc := markuptest.New()
	s := doc.Element(doc.Root(), "Section")
	doc.Element(s, "Heading")
	second := doc.Element(s, "Heading")
	tree := doc.Build(t)

	diags := runRule(t, newHeadingOutline(t), tree)
	require.Len(t, diags, 1)
	assert.Equal(t, tree.Opening(second), diags[0].Node)
	assert.Equal(t, HeadingOutlineName, diags[0].Rule)
	assert.Equal(t, engine.SeverityWarning, diags[0].Severity)
}

func TestHeadingOutline_DuplicatePageHeadingOnSecondOnly(t *testing.T) {
	doc := markuptest.New()
	doc.Element(doc.Root(), "PageHeading")
	doc.Element(doc.Root(), "div")
	second := doc.Element(doc.Element(doc.Root(), "Article"), "PageHeading")
	tree := doc.Build(t)

	diags := runRule(t, newHeadingOutline(t), tree)
	require.Len(t, diags, 1)
	assert.Equal(t, KindDuplicatePageHeading, diags[0].Kind)
	assert.Equal(t, tree.Opening(second), diags[0].Node)
}

func TestHeadingOutline_TagOverride(t *testing.T) {
	tests := []struct {
		name     string
		build    func(d *markuptest.Doc) markup.NodeID
		want     []engine.DiagnosticKind
		onTagArg bool
	}{
		{
			name: "in a section",
			build: func(d *markuptest.Doc) markup.NodeID {
				return d.Element(d.Element(d.Root(), "Section"), "Heading", markuptest.Lit("tag", "h3"))
			},
			want:     []engine.DiagnosticKind{KindRedundantTagOverride},
			onTagArg: true,
		},
		{
			name: "expression value",
			build: func(d *markuptest.Doc) markup.NodeID {
				return d.Element(d.Element(d.Root(), "Section"), "Heading", markuptest.Expr("tag"))
			},
			want:     []engine.DiagnosticKind{KindRedundantTagOverride},
			onTagArg: true,
		},
		{
			name: "outline finding takes precedence",
			build: func(d *markuptest.Doc) markup.NodeID {
				return d.Element(d.Root(), "Heading", markuptest.Lit("tag", "h2"))
			},
			want: []engine.DiagnosticKind{KindRootHeadingNoOutline},
		},
		{
			name: "still reported in exempt context",
			build: func(d *markuptest.Doc) markup.NodeID {
				decl := d.Declarator(d.Root(), "TitleHeading", markup.InitNone, "")
				return d.Element(decl, "Heading", markuptest.Lit("tag", "h2"))
			},
			want:     []engine.DiagnosticKind{KindRedundantTagOverride},
			onTagArg: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := markuptest.New()
			el := tt.build(doc)
			tree := doc.Build(t)

			diags := runRule(t, newHeadingOutline(t), tree)
			require.Equal(t, tt.want, diagKinds(diags))
			if tt.onTagArg {
				attr := tree.Attributes(tree.Opening(el))[0]
				assert.Equal(t, attr, diags[0].Node)
			}
		})
	}
}

func TestHeadingOutline_BareTags(t *testing.T) {
	doc := markuptest.New()
	sec := doc.Element(doc.Root(), "section")
	doc.Element(sec, "Heading")
	wrapper := doc.Declarator(doc.Root(), "Wrapper", markup.InitStyledTag, "nav")
	doc.Declarator(doc.Root(), "Box", markup.InitStyledTag, "div")
	tree := doc.Build(t)

	diags := runRule(t, newHeadingOutline(t), tree)
	require.Equal(t, []engine.DiagnosticKind{
		KindBareTagShouldExtendSemanticContainer,
		KindRootHeadingNoOutline,
		KindBareTagShouldExtendSemanticContainer,
	}, diagKinds(diags))

	assert.Equal(t, tree.Opening(sec), diags[0].Node)
	assert.Contains(t, diags[0].Message, "smarthr-ui/Section")
	assert.NotContains(t, diags[0].Message, "styled.section")

	assert.Equal(t, wrapper, diags[2].Node)
	assert.Contains(t, diags[2].Message, `"styled.nav" -> "styled(Nav)"`)
}

func TestHeadingOutline_ComponentNamesRunBeforeBareTagCheck(t *testing.T) {
	doc := markuptest.New()
	decl := doc.Declarator(doc.Root(), "SideSection", markup.InitStyledTag, "aside")
	tree := doc.Build(t)

	diags := runRule(t, newHeadingOutline(t), tree)
	require.Equal(t, []engine.DiagnosticKind{
		formatter.KindUnexpectedName,
		KindBareTagShouldExtendSemanticContainer,
	}, diagKinds(diags))
	assert.Equal(t, decl, diags[0].Node)
	assert.Contains(t, diags[0].Message, "SideSection is named as if it extends smarthr-ui/Section")
}

func TestHeadingOutline_StateIsPerFile(t *testing.T) {
	doc := markuptest.New()
	doc.Element(doc.Root(), "PageHeading")
	s := doc.Element(doc.Root(), "Section")
	doc.Element(s, "Heading")
	tree := doc.Build(t)

	r := newHeadingOutline(t)
	assert.Empty(t, runRule(t, r, tree))
	assert.Empty(t, runRule(t, r, tree))
}

func TestFileValidationState(t *testing.T) {
	s := NewFileValidationState()
	assert.Equal(t, 1, s.AddPageHeading(3))
	assert.Equal(t, 2, s.AddPageHeading(9))
	assert.Equal(t, []markup.NodeID{3, 9}, s.PageHeadings)

	assert.True(t, s.Claim(4))
	assert.False(t, s.Claim(4))
	assert.True(t, s.IsClaimed(4))
	assert.False(t, s.IsClaimed(5))
	assert.Equal(t, 1, s.ClaimedCount())
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{RolePresentationName, HeadingOutlineName}, Names())

	all, err := All(WithAdditionalInteractive(`Toggle$`))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, RolePresentationName, all[0].Name())

	_, err = New("no-such-rule")
	assert.ErrorIs(t, err, ErrUnknownRule)

	_, err = All(WithAdditionalInteractive(""))
	assert.Error(t, err)
}
