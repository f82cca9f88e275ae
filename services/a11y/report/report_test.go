// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

func sampleResults() []*lint.LintResult {
	return []*lint.LintResult{
		{
			Valid:    false,
			FilePath: "src/Page.tsx",
			Linter:   lint.LinterName,
			Errors: []lint.LintIssue{{
				File: "src/Page.tsx", Line: 5, Column: 5,
				Rule: "a11y-delegate-element-has-role-presentation", Kind: "NonInteractiveHandler",
				Severity: lint.SeverityError, Message: "Non-interactive element has a handler",
			}},
			Warnings: []lint.LintIssue{{
				File: "src/Page.tsx", Line: 12, Column: 7,
				Rule: "a11y-heading-in-sectioning-content", Kind: "DuplicateSectionHeading",
				Severity: lint.SeverityWarning, Message: "Section has more than one heading",
			}},
		},
		{Valid: true, FilePath: "src/Clean.tsx", Cached: true},
		nil,
	}
}

func TestTextReporter_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextReporter{}).Report(&buf, sampleResults()))

	want := "src/Page.tsx\n" +
		"  5:5   error    Non-interactive element has a handler  a11y-delegate-element-has-role-presentation/NonInteractiveHandler\n" +
		"  12:7  warning  Section has more than one heading  a11y-heading-in-sectioning-content/DuplicateSectionHeading\n" +
		"\n" +
		"✗ 1 error, 1 warning in 2 files (1 cached)\n"
	assert.Equal(t, want, buf.String())
}

func TestTextReporter_CleanRun(t *testing.T) {
	var buf bytes.Buffer
	results := []*lint.LintResult{{Valid: true, FilePath: "a.tsx"}}
	require.NoError(t, (&TextReporter{}).Report(&buf, results))
	assert.Equal(t, "✓ 0 errors, 0 warnings in 1 file\n", buf.String())
}

func TestTextReporter_ParseErrors(t *testing.T) {
	var buf bytes.Buffer
	results := []*lint.LintResult{{Valid: true, FilePath: "a.tsx", ParseErrors: []string{"syntax error at line 3"}}}
	require.NoError(t, (&TextReporter{}).Report(&buf, results))
	assert.Contains(t, buf.String(), "a.tsx\n  parse: syntax error at line 3\n")
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONReporter{}).Report(&buf, sampleResults()))

	var doc struct {
		Linter  string       `json:"linter"`
		Summary lint.Summary `json:"summary"`
		Results []struct {
			FilePath string `json:"file_path"`
			Errors   []struct {
				Severity string `json:"severity"`
				Kind     string `json:"kind"`
			} `json:"errors"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, lint.LinterName, doc.Linter)
	assert.Equal(t, lint.Summary{Files: 2, Errors: 1, Warnings: 1, Cached: 1}, doc.Summary)
	require.Len(t, doc.Results, 2)
	require.Len(t, doc.Results[0].Errors, 1)
	assert.Equal(t, "error", doc.Results[0].Errors[0].Severity)
	assert.Equal(t, "NonInteractiveHandler", doc.Results[0].Errors[0].Kind)
}

func TestNew(t *testing.T) {
	r, err := New(FormatJSON, true)
	require.NoError(t, err)
	assert.IsType(t, &JSONReporter{}, r)

	r, err = New("", true)
	require.NoError(t, err)
	assert.Equal(t, &TextReporter{Color: true}, r)

	_, err = New("sarif", false)
	assert.Error(t, err)
}

func TestColorEnabled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(os.Stdout))
}
