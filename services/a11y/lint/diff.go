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
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// AddedLines maps a file path (slash-separated, "a/" and "b/" stripped) to
// the new-side line numbers added by a diff.
type AddedLines map[string]map[int]bool

// ParseAddedLines reads a unified diff.
//
// Description:
//
//	Deleted files contribute nothing. Context and removed lines are not
//	considered added.
//
// Outputs:
//
//	AddedLines - Per-file added line numbers
//	error - ErrInvalidDiff if the diff cannot be parsed
func ParseAddedLines(unified string) (AddedLines, error) {
	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(unified)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDiff, err)
	}

	added := make(AddedLines)
	for _, fd := range fileDiffs {
		if fd.NewName == "/dev/null" {
			continue
		}
		name := cleanDiffName(fd.NewName)
		lines := added[name]
		if lines == nil {
			lines = make(map[int]bool)
			added[name] = lines
		}
		for _, hunk := range fd.Hunks {
			collectAdded(hunk, lines)
		}
	}
	return added, nil
}

func collectAdded(hunk *diff.Hunk, into map[int]bool) {
	line := int(hunk.NewStartLine)
	for _, raw := range bytes.Split(hunk.Body, []byte("\n")) {
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '+':
			into[line] = true
			line++
		case ' ':
			line++
		}
	}
}

func cleanDiffName(name string) string {
	name = strings.TrimPrefix(name, "b/")
	name = strings.TrimPrefix(name, "a/")
	return filepath.ToSlash(filepath.Clean(name))
}

// lookup finds the added lines for a linted path. Paths match when equal or
// when one ends with "/"+other, so absolute paths match repo-relative ones.
func (a AddedLines) lookup(path string) (map[int]bool, bool) {
	path = filepath.ToSlash(filepath.Clean(path))
	if lines, ok := a[path]; ok {
		return lines, true
	}
	// Longest suffix match wins; ties break on name so map order never matters.
	best := ""
	for name := range a {
		if !strings.HasSuffix(path, "/"+name) && !strings.HasSuffix(name, "/"+path) {
			continue
		}
		if len(name) > len(best) || (len(name) == len(best) && name < best) {
			best = name
		}
	}
	if best == "" {
		return nil, false
	}
	return a[best], true
}

// FilterByDiff keeps only issues on lines a diff adds.
//
// Description:
//
//	Results for files the diff does not touch are dropped. Valid is
//	recomputed from the remaining errors. Input results are not modified.
//
// Inputs:
//
//	results - Lint results, nil entries skipped
//	unified - A unified diff such as `git diff` output
//
// Outputs:
//
//	[]*LintResult - Filtered copies
//	error - ErrInvalidDiff
func FilterByDiff(results []*LintResult, unified string) ([]*LintResult, error) {
	added, err := ParseAddedLines(unified)
	if err != nil {
		return nil, err
	}

	out := make([]*LintResult, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		lines, ok := added.lookup(r.FilePath)
		if !ok {
			continue
		}
		filtered := *r
		filtered.Errors = keepLines(r.Errors, lines)
		filtered.Warnings = keepLines(r.Warnings, lines)
		filtered.Infos = keepLines(r.Infos, lines)
		filtered.Valid = len(filtered.Errors) == 0
		out = append(out, &filtered)
	}
	return out, nil
}

func keepLines(issues []LintIssue, lines map[int]bool) []LintIssue {
	kept := make([]LintIssue, 0, len(issues))
	for _, issue := range issues {
		if lines[issue.Line] {
			kept = append(kept, issue)
		}
	}
	return kept
}
