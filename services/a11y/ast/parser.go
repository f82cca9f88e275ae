// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast turns source files into markup trees.
//
// Script sources (.tsx, .jsx, .ts, .js) are parsed with tree-sitter and
// converted node by node into a markup.Tree. Markdown sources are parsed
// with goldmark and every fenced jsx/tsx/js/ts code block becomes its own
// compilation unit, with line numbers mapped back to the Markdown file.
package ast

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/AleutianAI/a11ylint/services/a11y/markup"
)

// DefaultMaxFileSize is the largest file accepted by default (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// WarnFileSize triggers a warning log for large inputs (1MB).
const WarnFileSize = 1024 * 1024

// Parser produces markup trees from source bytes.
type Parser interface {
	// Parse converts content into one or more compilation units.
	//
	// Syntax errors do not fail the parse: tree-sitter recovers and the
	// problem is noted in ParseResult.Errors. A non-nil error means no
	// usable tree could be produced (cancellation, size, invalid UTF-8).
	//
	// Thread Safety: Implementations are safe for concurrent use.
	Parse(ctx context.Context, content []byte, filePath string) (*ParseResult, error)

	// Language returns the lowercase language name.
	Language() string

	// Extensions returns handled extensions including the leading dot.
	Extensions() []string
}

// Unit is one compilation unit inside a file.
type Unit struct {
	// Tree is the converted markup tree.
	Tree *markup.Tree

	// Dialect is the grammar used: "tsx", "typescript" or "javascript".
	Dialect string

	// LineOffset is added to tree-sitter rows; non-zero for Markdown blocks.
	LineOffset int
}

// ParseResult is the outcome of parsing one file.
type ParseResult struct {
	// FilePath is the path given to Parse.
	FilePath string `json:"file_path"`

	// Language is the parser's language.
	Language string `json:"language"`

	// Hash is the hex SHA-256 of the content.
	Hash string `json:"hash"`

	// ParsedAtMilli is the parse time in Unix milliseconds.
	ParsedAtMilli int64 `json:"parsed_at_milli"`

	// Units are the compilation units in source order.
	Units []Unit `json:"-"`

	// Errors are recoverable problems, such as syntax errors.
	Errors []string `json:"errors,omitempty"`
}

// NodeCount returns the total node count over all units.
func (r *ParseResult) NodeCount() int {
	total := 0
	for _, u := range r.Units {
		if u.Tree != nil {
			total += u.Tree.Len()
		}
	}
	return total
}

// =============================================================================
// PARSER REGISTRY
// =============================================================================

// ParserRegistry selects a parser by language or extension.
//
// Thread Safety: Safe for concurrent use.
type ParserRegistry struct {
	mu          sync.RWMutex
	byLanguage  map[string]Parser
	byExtension map[string]Parser
}

// NewParserRegistry creates an empty registry.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{
		byLanguage:  make(map[string]Parser),
		byExtension: make(map[string]Parser),
	}
}

// NewDefaultRegistry registers the TypeScript, JavaScript and Markdown parsers.
func NewDefaultRegistry(opts ...SourceParserOption) *ParserRegistry {
	r := NewParserRegistry()
	ts := NewTypeScriptParser(opts...)
	js := NewJavaScriptParser(opts...)
	r.Register(ts)
	r.Register(js)
	r.Register(NewMarkdownParser(ts, js))
	return r
}

// Register adds parser under its language and extensions, replacing any
// previous owner.
func (r *ParserRegistry) Register(parser Parser) {
	if parser == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byLanguage[parser.Language()] = parser
	for _, ext := range parser.Extensions() {
		r.byExtension[ext] = parser
	}
}

// GetByLanguage returns the parser for language.
func (r *ParserRegistry) GetByLanguage(language string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byLanguage[language]
	return p, ok
}

// GetByExtension returns the parser for ext (with leading dot).
func (r *ParserRegistry) GetByExtension(ext string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byExtension[strings.ToLower(ext)]
	return p, ok
}

// ForPath returns the parser for a file path's extension.
func (r *ParserRegistry) ForPath(path string) (Parser, bool) {
	return r.GetByExtension(filepath.Ext(path))
}

// Extensions returns every registered extension, sorted.
func (r *ParserRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Languages returns every registered language, sorted.
func (r *ParserRegistry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]string, 0, len(r.byLanguage))
	for lang := range r.byLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
