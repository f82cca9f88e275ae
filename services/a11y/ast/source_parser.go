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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Grammar dialects.
const (
	DialectTSX        = "tsx"
	DialectTypeScript = "typescript"
	DialectJavaScript = "javascript"
)

func grammar(dialect string) *sitter.Language {
	switch dialect {
	case DialectTSX:
		return tsx.GetLanguage()
	case DialectTypeScript:
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// SourceParserOption configures a SourceParser.
type SourceParserOption func(*SourceParser)

// WithMaxFileSize sets the size limit in bytes. Non-positive values are ignored.
func WithMaxFileSize(bytes int64) SourceParserOption {
	return func(p *SourceParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// SourceParser parses script sources with tree-sitter.
//
// Description:
//
//	The dialect is picked per file: .tsx uses the TSX grammar, other
//	TypeScript extensions use the plain TypeScript grammar (where <T>x is a
//	cast, not markup), and JavaScript extensions use the JavaScript grammar,
//	which accepts JSX everywhere.
//
// Thread Safety: Safe for concurrent use. Each Parse creates its own
// tree-sitter parser.
type SourceParser struct {
	language    string
	extensions  []string
	dialectFor  func(ext string) string
	maxFileSize int64
}

// NewTypeScriptParser handles .ts, .tsx, .mts and .cts.
func NewTypeScriptParser(opts ...SourceParserOption) *SourceParser {
	p := &SourceParser{
		language:   "typescript",
		extensions: []string{".ts", ".tsx", ".mts", ".cts"},
		dialectFor: func(ext string) string {
			if ext == ".tsx" {
				return DialectTSX
			}
			return DialectTypeScript
		},
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewJavaScriptParser handles .js, .jsx, .mjs and .cjs.
func NewJavaScriptParser(opts ...SourceParserOption) *SourceParser {
	p := &SourceParser{
		language:    "javascript",
		extensions:  []string{".js", ".jsx", ".mjs", ".cjs"},
		dialectFor:  func(string) string { return DialectJavaScript },
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language implements Parser.
func (p *SourceParser) Language() string {
	return p.language
}

// Extensions implements Parser.
func (p *SourceParser) Extensions() []string {
	out := make([]string, len(p.extensions))
	copy(out, p.extensions)
	return out
}

// Parse implements Parser.
//
// Inputs:
//
//	ctx - Checked before and after the tree-sitter pass
//	content - UTF-8 source
//	filePath - Used for dialect selection and error context
//
// Outputs:
//
//	*ParseResult - One unit
//	error - ErrFileTooLarge, ErrInvalidContent, ErrParseFailed or ctx.Err()
func (p *SourceParser) Parse(ctx context.Context, content []byte, filePath string) (*ParseResult, error) {
	ctx, span := startParseSpan(ctx, p.language, filePath, len(content))
	defer span.End()
	start := time.Now()

	if err := p.validate(ctx, content, filePath); err != nil {
		recordParseMetrics(ctx, p.language, time.Since(start), 0, true)
		return nil, err
	}

	dialect := p.dialectFor(strings.ToLower(filepath.Ext(filePath)))
	unit, syntaxErr, err := parseUnit(ctx, content, dialect, 0)
	if err != nil {
		recordParseMetrics(ctx, p.language, time.Since(start), 0, true)
		return nil, &ParseError{FilePath: filePath, Message: "tree-sitter parse failed", Cause: err}
	}

	hash := sha256.Sum256(content)
	result := &ParseResult{
		FilePath:      filePath,
		Language:      p.language,
		Hash:          hex.EncodeToString(hash[:]),
		ParsedAtMilli: time.Now().UnixMilli(),
		Units:         []Unit{unit},
		Errors:        make([]string, 0),
	}
	if syntaxErr {
		result.Errors = append(result.Errors, "source contains syntax errors")
	}

	recordParseMetrics(ctx, p.language, time.Since(start), result.NodeCount(), false)
	return result, nil
}

func (p *SourceParser) validate(ctx context.Context, content []byte, filePath string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(content)) > p.maxFileSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}
	if len(content) > WarnFileSize {
		slog.Warn("Parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)),
		)
	}
	if !utf8.Valid(content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}
	return nil
}

// parseUnit runs tree-sitter on content and converts the result.
func parseUnit(ctx context.Context, content []byte, dialect string, lineOffset int) (Unit, bool, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(grammar(dialect))

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return Unit{}, false, err
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return Unit{}, false, err
	}

	root := tree.RootNode()
	if root == nil {
		return Unit{}, false, ErrParseFailed
	}

	mt, err := convert(root, content, lineOffset)
	if err != nil {
		return Unit{}, false, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return Unit{Tree: mt, Dialect: dialect, LineOffset: lineOffset}, root.HasError(), nil
}
