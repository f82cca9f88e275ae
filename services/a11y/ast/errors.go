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
	"errors"
	"fmt"
)

// Sentinel errors for parse failures. Check with errors.Is.
var (
	// ErrUnsupportedLanguage indicates no parser handles the file type.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailed indicates the parser produced no usable tree.
	ErrParseFailed = errors.New("parse failed")

	// ErrInvalidContent indicates content that is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrFileTooLarge indicates content above the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// ParseError locates a parse failure in a file.
type ParseError struct {
	// FilePath is the file being parsed.
	FilePath string

	// Line is 1-indexed, 0 when unknown.
	Line int

	// Message describes the failure.
	Message string

	// Cause is the underlying error, may be nil.
	Cause error
}

// Error formats as "file:line: message" or "file: message".
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns the cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// WrapParseError attaches file context to err. ParseErrors pass through.
func WrapParseError(err error, filePath string) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{FilePath: filePath, Message: err.Error(), Cause: err}
}
