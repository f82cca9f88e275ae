// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders lint results for terminals and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// Format names an output format.
type Format string

const (
	// FormatText is the human-readable format.
	FormatText Format = "text"

	// FormatJSON is a single JSON document.
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON}

// Reporter writes results to w.
type Reporter interface {
	Report(w io.Writer, results []*lint.LintResult) error
}

// New returns the reporter for format. color applies to text only.
func New(format Format, color bool) (Reporter, error) {
	switch format {
	case FormatText, "":
		return &TextReporter{Color: color}, nil
	case FormatJSON:
		return &JSONReporter{Indent: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// ColorEnabled reports whether f is a terminal that should get color.
// NO_COLOR disables color regardless.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// =============================================================================
// TEXT
// =============================================================================

var (
	colorError   = lipgloss.Color("#E74C3C")
	colorWarning = lipgloss.Color("#F4D03F")
	colorInfo    = lipgloss.Color("#20B9B4")
	colorMuted   = lipgloss.Color("#2C4A54")
	colorSuccess = lipgloss.Color("#2CD7C7")
)

type textStyles struct {
	file    lipgloss.Style
	error   lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
}

func newTextStyles(color bool) textStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return textStyles{plain, plain, plain, plain, plain, plain}
	}
	return textStyles{
		file:    lipgloss.NewStyle().Bold(true).Underline(true),
		error:   lipgloss.NewStyle().Foreground(colorError),
		warning: lipgloss.NewStyle().Foreground(colorWarning),
		info:    lipgloss.NewStyle().Foreground(colorInfo),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		success: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
	}
}

func (s textStyles) severity(sev lint.Severity) lipgloss.Style {
	switch sev {
	case lint.SeverityError:
		return s.error
	case lint.SeverityWarning:
		return s.warning
	default:
		return s.info
	}
}

// TextReporter groups issues by file, then prints a summary line.
//
// Output:
//
//	src/Page.tsx
//	  5:5  error    Non-interactive element ...  a11y-.../NonInteractiveHandler
//
//	✗ 1 error, 0 warnings in 1 file
type TextReporter struct {
	Color bool
}

// Report implements Reporter.
func (r *TextReporter) Report(w io.Writer, results []*lint.LintResult) error {
	st := newTextStyles(r.Color)
	var b strings.Builder

	for _, res := range results {
		if res == nil {
			continue
		}
		if !res.HasIssues() && len(res.ParseErrors) == 0 {
			continue
		}
		b.WriteString(st.file.Render(res.FilePath))
		b.WriteByte('\n')

		issues := res.AllIssues()
		locWidth, sevWidth := 0, 0
		for i := range issues {
			locWidth = max(locWidth, len(position(&issues[i])))
			sevWidth = max(sevWidth, len(issues[i].Severity.String()))
		}
		for i := range issues {
			issue := &issues[i]
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
				st.muted.Render(pad(position(issue), locWidth)),
				st.severity(issue.Severity).Render(pad(issue.Severity.String(), sevWidth)),
				issue.Message,
				st.muted.Render(issue.RuleID()),
			)
		}
		for _, pe := range res.ParseErrors {
			fmt.Fprintf(&b, "  %s\n", st.warning.Render("parse: "+pe))
		}
		b.WriteByte('\n')
	}

	b.WriteString(summaryLine(st, lint.Summarize(results)))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func position(i *lint.LintIssue) string {
	if i.Column > 0 {
		return fmt.Sprintf("%d:%d", i.Line, i.Column)
	}
	return fmt.Sprintf("%d", i.Line)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func summaryLine(st textStyles, s lint.Summary) string {
	counts := fmt.Sprintf("%s, %s in %s",
		plural(s.Errors, "error"), plural(s.Warnings, "warning"), plural(s.Files, "file"))
	if s.Cached > 0 {
		counts += fmt.Sprintf(" (%d cached)", s.Cached)
	}
	switch {
	case s.Errors > 0:
		return st.error.Render("✗ " + counts)
	case s.Warnings > 0:
		return st.warning.Render("⚠ " + counts)
	default:
		return st.success.Render("✓ " + counts)
	}
}

// =============================================================================
// JSON
// =============================================================================

// Document is the JSON output shape.
type Document struct {
	Linter  string             `json:"linter"`
	Summary lint.Summary       `json:"summary"`
	Results []*lint.LintResult `json:"results"`
}

// JSONReporter writes a Document.
type JSONReporter struct {
	Indent bool
}

// Report implements Reporter.
func (r *JSONReporter) Report(w io.Writer, results []*lint.LintResult) error {
	doc := Document{
		Linter:  lint.LinterName,
		Summary: lint.Summarize(results),
		Results: make([]*lint.LintResult, 0, len(results)),
	}
	for _, res := range results {
		if res != nil {
			doc.Results = append(doc.Results, res)
		}
	}

	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}
