// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/engine"
	"github.com/AleutianAI/a11ylint/services/a11y/markup"
	"github.com/AleutianAI/a11ylint/services/a11y/markup/markuptest"
)

var testTable = Table{
	Expected: []Entry{
		{Match: `Heading$`, Want: `Heading$`},
		{Match: `^h1$`, Want: `PageHeading$`},
		{Match: `^h(|2|3|4|5|6)$`, Want: `Heading$`},
	},
	Unexpected: []Entry{
		{Match: `(Heading|^h(1|2|3|4|5|6))$`, Want: `(Heading)$`},
		{Match: `(S|^s)ection$`, Want: `(Section)$`, Template: "{{extended}} should extend {{expected}}"},
	},
}

func kinds(fs []Finding) []engine.DiagnosticKind {
	out := make([]engine.DiagnosticKind, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Kind)
	}
	return out
}

func TestCheck(t *testing.T) {
	f := MustCompile(testTable)

	tests := []struct {
		name     string
		base     string
		extended string
		want     []engine.DiagnosticKind
	}{
		{"matching heading", "Heading", "TitleHeading", nil},
		{"heading lost suffix", "Heading", "Title", []engine.DiagnosticKind{KindExpectedName}},
		{"h1 needs page heading", "h1", "Title", []engine.DiagnosticKind{KindExpectedName}},
		{"h1 as page heading", "h1", "TitlePageHeading", nil},
		{"h3 as heading", "h3", "SubHeading", nil},
		{"div claims heading", "div", "SubHeading", []engine.DiagnosticKind{KindUnexpectedName}},
		{"div claims section", "div", "MainSection", []engine.DiagnosticKind{KindUnexpectedName}},
		{"section tag as section", "section", "MainSection", nil},
		{"empty base", "", "MainSection", nil},
		{"empty extended", "div", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Check(tt.base, tt.extended)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, kinds(got))
		})
	}
}

func TestCheck_EveryViolatedEntryReports(t *testing.T) {
	f := MustCompile(Table{
		Expected: []Entry{
			{Match: `Link$`, Want: `Link$`},
			{Match: `Text`, Want: `Text`},
		},
		Unexpected: []Entry{
			{Match: `Button$`, Want: `(Button)$`},
			{Match: `Icon`, Want: `(IconButton)$`},
		},
	})

	got := f.Check("TextLink", "SaveIconButton")
	assert.Equal(t, []engine.DiagnosticKind{
		KindExpectedName,
		KindExpectedName,
		KindUnexpectedName,
		KindUnexpectedName,
	}, kinds(got))
}

func TestCheck_TemplateAndDefaultMessages(t *testing.T) {
	f := MustCompile(testTable)

	got := f.Check("div", "MainSection")
	require.Len(t, got, 1)
	assert.Equal(t, "MainSection should extend Section", got[0].Message)

	got = f.Check("div", "SubHeading")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "SubHeading is named like a Heading but extends div")
}

func TestCompile_InvalidTable(t *testing.T) {
	_, err := Compile(Table{Expected: []Entry{{Match: "(", Want: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidTable)
	_, err = Compile(Table{Unexpected: []Entry{{Match: "x", Want: "["}}})
	assert.ErrorIs(t, err, ErrInvalidTable)
	assert.Panics(t, func() { MustCompile(Table{Expected: []Entry{{Match: "(", Want: "x"}}}) })
}

type formatterRule struct{ f *Formatter }

func (r formatterRule) Name() string                               { return "names" }
func (r formatterRule) Description() string                        { return "" }
func (r formatterRule) Severity() engine.Severity                  { return engine.SeverityWarning }
func (r formatterRule) Create(ctx *engine.Context) engine.Handlers { return r.f.Handlers(ctx) }

func TestHandlers(t *testing.T) {
	doc := markuptest.New()
	styled := doc.Declarator(doc.Root(), "Title", markup.InitStyledComponent, "Heading")
	doc.Declarator(doc.Root(), "Plain", markup.InitNone, "")
	doc.Declarator(doc.Root(), "OkHeading", markup.InitStyledComponent, "Heading")
	renamed := doc.ImportSpecifier("Heading", "Caption")
	doc.ImportSpecifier("Heading", "Heading")
	tree := doc.Build(t)

	diags := engine.Run(tree, "a.tsx", []engine.Rule{formatterRule{f: MustCompile(testTable)}})
	require.Len(t, diags, 2)
	assert.Equal(t, styled, diags[0].Node)
	assert.Equal(t, KindExpectedName, diags[0].Kind)
	assert.Equal(t, renamed, diags[1].Node)
	assert.Equal(t, KindExpectedName, diags[1].Kind)
}
