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
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser lints the fenced code blocks of Markdown and MDX files.
//
// Description:
//
//	Each fenced block tagged jsx, tsx, js, javascript, ts or typescript is
//	parsed as its own unit with the matching grammar. Diagnostics line up
//	with the Markdown file because every unit carries the line offset of its
//	block. Other blocks and prose are ignored.
//
// Thread Safety: Safe for concurrent use.
type MarkdownParser struct {
	md          goldmark.Markdown
	maxFileSize int64
}

// NewMarkdownParser creates a parser sharing the size limit of ts.
func NewMarkdownParser(ts, js *SourceParser) *MarkdownParser {
	limit := DefaultMaxFileSize
	if ts != nil && ts.maxFileSize > 0 {
		limit = ts.maxFileSize
	} else if js != nil && js.maxFileSize > 0 {
		limit = js.maxFileSize
	}
	return &MarkdownParser{md: goldmark.New(), maxFileSize: limit}
}

// Language implements Parser.
func (p *MarkdownParser) Language() string {
	return "markdown"
}

// Extensions implements Parser.
func (p *MarkdownParser) Extensions() []string {
	return []string{".md", ".mdx"}
}

// fenceDialect maps a fence info string to a grammar, "" when not linted.
func fenceDialect(info string) string {
	switch strings.ToLower(info) {
	case "tsx":
		return DialectTSX
	case "ts", "typescript":
		return DialectTypeScript
	case "jsx", "js", "javascript":
		return DialectJavaScript
	default:
		return ""
	}
}

// Parse implements Parser.
func (p *MarkdownParser) Parse(ctx context.Context, content []byte, filePath string) (*ParseResult, error) {
	ctx, span := startParseSpan(ctx, p.Language(), filePath, len(content))
	defer span.End()
	start := time.Now()

	sp := &SourceParser{maxFileSize: p.maxFileSize}
	if err := sp.validate(ctx, content, filePath); err != nil {
		recordParseMetrics(ctx, p.Language(), time.Since(start), 0, true)
		return nil, err
	}

	doc := p.md.Parser().Parse(text.NewReader(content))

	hash := sha256.Sum256(content)
	result := &ParseResult{
		FilePath:      filePath,
		Language:      p.Language(),
		Hash:          hex.EncodeToString(hash[:]),
		ParsedAtMilli: time.Now().UnixMilli(),
		Units:         make([]Unit, 0),
		Errors:        make([]string, 0),
	}

	var walkErr error
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		block, ok := n.(*gast.FencedCodeBlock)
		if !ok {
			return gast.WalkContinue, nil
		}
		dialect := fenceDialect(string(block.Language(content)))
		if dialect == "" {
			return gast.WalkSkipChildren, nil
		}
		code, offset, ok := blockSource(block, content)
		if !ok {
			return gast.WalkSkipChildren, nil
		}
		unit, syntaxErr, err := parseUnit(ctx, code, dialect, offset)
		if err != nil {
			walkErr = err
			return gast.WalkStop, nil
		}
		result.Units = append(result.Units, unit)
		if syntaxErr {
			result.Errors = append(result.Errors,
				fmt.Sprintf("code block at line %d contains syntax errors", offset+1))
		}
		return gast.WalkSkipChildren, nil
	})

	if walkErr != nil {
		recordParseMetrics(ctx, p.Language(), time.Since(start), 0, true)
		return nil, &ParseError{FilePath: filePath, Message: "code block parse failed", Cause: walkErr}
	}

	recordParseMetrics(ctx, p.Language(), time.Since(start), result.NodeCount(), false)
	return result, nil
}

// blockSource joins the block's lines and returns the 0-based line of its
// first line in the file.
func blockSource(block *gast.FencedCodeBlock, content []byte) ([]byte, int, bool) {
	lines := block.Lines()
	if lines.Len() == 0 {
		return nil, 0, false
	}
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(content))
	}
	first := lines.At(0)
	return buf.Bytes(), bytes.Count(content[:first.Start], []byte("\n")), true
}
