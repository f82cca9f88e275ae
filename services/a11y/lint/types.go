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
	"fmt"
	"time"

	"github.com/AleutianAI/a11ylint/services/a11y/engine"
)

// LinterName identifies results produced by this package.
const LinterName = "a11ylint"

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the engine severity, re-exported for result consumers.
type Severity = engine.Severity

// Severity levels.
const (
	SeverityInfo    = engine.SeverityInfo
	SeverityWarning = engine.SeverityWarning
	SeverityError   = engine.SeverityError
)

// =============================================================================
// LINT RESULT
// =============================================================================

// LintResult is the outcome of linting one file.
//
// Thread Safety: Immutable after creation by the runner.
type LintResult struct {
	// Valid is true if no blocking errors were found.
	Valid bool `json:"valid"`

	// Errors are issues with SeverityError.
	Errors []LintIssue `json:"errors"`

	// Warnings are issues with SeverityWarning.
	Warnings []LintIssue `json:"warnings"`

	// Infos are informational issues.
	Infos []LintIssue `json:"infos"`

	// Duration is how long parsing and rule evaluation took.
	Duration time.Duration `json:"duration"`

	// Linter is always LinterName.
	Linter string `json:"linter"`

	// Language is the parser language ("typescript", "javascript", "markdown").
	Language string `json:"language"`

	// FilePath is the linted file.
	FilePath string `json:"file_path,omitempty"`

	// Hash is the hex SHA-256 of the content.
	Hash string `json:"hash,omitempty"`

	// ParseErrors are recoverable parser problems. Findings near them may
	// be incomplete.
	ParseErrors []string `json:"parse_errors,omitempty"`

	// Cached is true when the result came from the result cache.
	Cached bool `json:"cached,omitempty"`
}

// HasErrors returns true if there are any blocking errors.
func (r *LintResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings.
func (r *LintResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasIssues returns true if there are any issues of any severity.
func (r *LintResult) HasIssues() bool {
	return r.IssueCount() > 0
}

// AllIssues returns errors, then warnings, then infos.
func (r *LintResult) AllIssues() []LintIssue {
	issues := make([]LintIssue, 0, r.IssueCount())
	issues = append(issues, r.Errors...)
	issues = append(issues, r.Warnings...)
	issues = append(issues, r.Infos...)
	return issues
}

// IssueCount returns the total number of issues.
func (r *LintResult) IssueCount() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Infos)
}

// =============================================================================
// LINT ISSUE
// =============================================================================

// LintIssue is a single finding located in a file.
//
// Thread Safety: Immutable after creation.
type LintIssue struct {
	// File is the path of the file containing the issue.
	File string `json:"file"`

	// Line is the 1-indexed start line.
	Line int `json:"line"`

	// Column is the 1-indexed start column.
	Column int `json:"column,omitempty"`

	// EndLine is the 1-indexed end line.
	EndLine int `json:"end_line,omitempty"`

	// EndColumn is the 1-indexed end column.
	EndColumn int `json:"end_column,omitempty"`

	// Rule is the rule name, e.g. "a11y-heading-in-sectioning-content".
	Rule string `json:"rule"`

	// Kind is the diagnostic kind within the rule, e.g. "DuplicatePageHeading".
	Kind string `json:"kind"`

	// Severity is the severity after policy.
	Severity Severity `json:"severity"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Linter is always LinterName.
	Linter string `json:"linter,omitempty"`
}

// RuleID returns "rule/Kind", the identifier policies match against.
func (i *LintIssue) RuleID() string {
	if i.Kind == "" {
		return i.Rule
	}
	return i.Rule + "/" + i.Kind
}

// Location returns a formatted location string (file:line:col).
func (i *LintIssue) Location() string {
	if i.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", i.File, i.Line, i.Column)
	}
	return fmt.Sprintf("%s:%d", i.File, i.Line)
}

// String returns "location: severity: message (rule/Kind)".
func (i *LintIssue) String() string {
	return fmt.Sprintf("%s: %s: %s (%s)", i.Location(), i.Severity, i.Message, i.RuleID())
}

// issueFromDiagnostic locates a diagnostic in filePath.
func issueFromDiagnostic(filePath string, d engine.Diagnostic) LintIssue {
	return LintIssue{
		File:      filePath,
		Line:      d.Span.Start.Line,
		Column:    d.Span.Start.Column,
		EndLine:   d.Span.End.Line,
		EndColumn: d.Span.End.Column,
		Rule:      d.Rule,
		Kind:      string(d.Kind),
		Severity:  d.Severity,
		Message:   d.Message,
		Linter:    LinterName,
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary totals a set of results.
type Summary struct {
	Files    int `json:"files"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Cached   int `json:"cached"`
}

// Summarize totals results. Nil entries are skipped.
func Summarize(results []*LintResult) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Files++
		s.Errors += len(r.Errors)
		s.Warnings += len(r.Warnings)
		s.Infos += len(r.Infos)
		if r.Cached {
			s.Cached++
		}
	}
	return s
}

// Blocking reports whether any result has blocking errors.
func (s Summary) Blocking() bool {
	return s.Errors > 0
}
