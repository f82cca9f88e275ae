// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package classify decides what a component is from its identifier alone.
//
// Each Category owns one regular expression compiled at construction time.
// Membership is a plain match with no precedence between categories, and
// the empty name never belongs to any category.
package classify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ErrInvalidPattern is returned when a caller-supplied pattern is empty or
// does not compile.
var ErrInvalidPattern = errors.New("invalid interactive pattern")

// Category is a component class.
type Category int

const (
	// Interactive components receive user input directly (inputs, buttons, links).
	Interactive Category = iota

	// Heading components render h1..h6.
	Heading

	// PageHeading is the single page-level heading.
	PageHeading

	// Sectioning components open an outline scope.
	Sectioning

	// Layout components open an outline scope only with as="section" and friends.
	Layout

	// BareSectioningTag is a raw article/aside/nav/section tag.
	BareSectioningTag

	// ModelessDialog components accept a heading through their header slot.
	ModelessDialog

	categoryCount
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Interactive:
		return "interactive"
	case Heading:
		return "heading"
	case PageHeading:
		return "page_heading"
	case Sectioning:
		return "sectioning"
	case Layout:
		return "layout"
	case BareSectioningTag:
		return "bare_sectioning_tag"
	case ModelessDialog:
		return "modeless_dialog"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// InteractivePatterns are the built-in interactive name patterns, in order.
var InteractivePatterns = []string{
	`(i|I)nput$`,
	`(t|T)extarea$`,
	`(s|S)elect$`,
	`InputFile$`,
	`RadioButtonPanel$`,
	`Check(b|B)ox$`,
	`Combo(b|B)ox$`,
	`DatePicker$`,
	`DropZone$`,
	`Switch$`,
	`SegmentedControl$`,
	`RightFixedNote$`,
	`FieldSet$`,
	`(b|B)utton$`,
	`Anchor$`,
	`Link$`,
	`TabItem$`,
	`^a$`,
	`(f|F)orm$`,
	`ActionDialogWithTrigger$`,
	`RemoteDialogTrigger$`,
	`RemoteTrigger(.+)Dialog$`,
	`FormDialog$`,
	`Pagination$`,
	`SideNav$`,
	`AccordionPanel$`,
}

// Fixed patterns for the non-extensible categories.
const (
	HeadingPattern           = `((^h(1|2|3|4|5|6))|Heading)$`
	PageHeadingPattern       = `PageHeading$`
	SectioningPattern        = `((A(rticle|side))|Nav|Section|^SectioningFragment)$`
	LayoutPattern            = `((C(ent|lust)er)|Reel|Sidebar|Stack)$`
	BareSectioningTagPattern = `^(article|aside|nav|section)$`
	ModelessDialogPattern    = `ModelessDialog$`
)

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier answers category membership for identifiers.
//
// Thread Safety: Immutable after New; safe for concurrent use.
type Classifier struct {
	patterns [categoryCount]*regexp.Regexp
	extra    []string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAdditionalInteractive ORs extra patterns into the interactive category.
func WithAdditionalInteractive(patterns ...string) Option {
	return func(c *Classifier) {
		c.extra = append(c.extra, patterns...)
	}
}

// New compiles a Classifier.
//
// Description:
//
//	Builds one alternation per category. The interactive alternation is the
//	built-in list followed by any patterns from WithAdditionalInteractive.
//
// Inputs:
//
//	opts - Optional configuration
//
// Outputs:
//
//	*Classifier - Ready to use
//	error - ErrInvalidPattern if an extra pattern is empty or malformed
func New(opts ...Option) (*Classifier, error) {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}

	for _, p := range c.extra {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
		}
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
		}
	}

	all := make([]string, 0, len(InteractivePatterns)+len(c.extra))
	all = append(all, InteractivePatterns...)
	all = append(all, c.extra...)

	sources := [categoryCount]string{
		Interactive:       "(" + strings.Join(all, "|") + ")",
		Heading:           HeadingPattern,
		PageHeading:       PageHeadingPattern,
		Sectioning:        SectioningPattern,
		Layout:            LayoutPattern,
		BareSectioningTag: BareSectioningTagPattern,
		ModelessDialog:    ModelessDialogPattern,
	}
	for cat, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, Category(cat), err)
		}
		c.patterns[cat] = re
	}
	return c, nil
}

var (
	defaultOnce       sync.Once
	defaultClassifier *Classifier
)

// Default returns the shared classifier with no extra patterns.
func Default() *Classifier {
	defaultOnce.Do(func() {
		c, err := New()
		if err != nil {
			panic(fmt.Sprintf("classify: built-in patterns do not compile: %v", err))
		}
		defaultClassifier = c
	})
	return defaultClassifier
}

// Is reports whether name belongs to cat. The empty name never does.
func (c *Classifier) Is(name string, cat Category) bool {
	if name == "" || cat < 0 || cat >= categoryCount {
		return false
	}
	return c.patterns[cat].MatchString(name)
}

// Pattern returns the compiled expression source for cat, used in messages.
func (c *Classifier) Pattern(cat Category) string {
	if cat < 0 || cat >= categoryCount {
		return ""
	}
	return c.patterns[cat].String()
}

// Categories returns every category name belongs to, in Category order.
func (c *Classifier) Categories(name string) []Category {
	var out []Category
	for cat := Category(0); cat < categoryCount; cat++ {
		if c.Is(name, cat) {
			out = append(out, cat)
		}
	}
	return out
}
