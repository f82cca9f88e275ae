// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lint package.
var (
	// ErrUnsupportedFile indicates no parser handles the file's extension.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrInvalidInput indicates invalid input to a lint function.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDiff indicates a unified diff that could not be parsed.
	ErrInvalidDiff = errors.New("invalid diff")
)

// LintError wraps a per-file failure with the operation that failed.
//
// Thread Safety: Immutable after creation.
type LintError struct {
	// FilePath is the file being linted.
	FilePath string

	// Op is the failing step: "read", "parse" or "lint".
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LintError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.FilePath, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LintError) Unwrap() error {
	return e.Err
}

// NewLintError creates a new LintError.
func NewLintError(op, filePath string, err error) *LintError {
	return &LintError{FilePath: filePath, Op: op, Err: err}
}
