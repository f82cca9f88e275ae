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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/src/Page.tsx b/src/Page.tsx
index 1111111..2222222 100644
--- a/src/Page.tsx
+++ b/src/Page.tsx
@@ -1,4 +1,5 @@
 export const Page = () => (
   <Section>
-    <h2>Old</h2>
+    <Heading>Title</Heading>
+    <Heading>Again</Heading>
     <div onClick={open}>x</div>
@@ -10,2 +11,3 @@
 a
+b
 c
diff --git a/src/Gone.tsx b/src/Gone.tsx
deleted file mode 100644
--- a/src/Gone.tsx
+++ /dev/null
@@ -1 +0,0 @@
-x
`

func TestParseAddedLines(t *testing.T) {
	added, err := ParseAddedLines(sampleDiff)
	require.NoError(t, err)

	lines, ok := added["src/Page.tsx"]
	require.True(t, ok)
	assert.Equal(t, map[int]bool{3: true, 4: true, 12: true}, lines)

	_, ok = added["src/Gone.tsx"]
	assert.False(t, ok, "deleted files contribute nothing")
}

func TestFilterByDiff(t *testing.T) {
	results := []*LintResult{
		{
			Valid:    false,
			FilePath: "/repo/src/Page.tsx",
			Errors:   []LintIssue{{Line: 5, Kind: "NonInteractiveHandler"}},
			Warnings: []LintIssue{{Line: 4, Kind: "DuplicateSectionHeading"}},
		},
		{
			Valid:    false,
			FilePath: "/repo/src/Other.tsx",
			Errors:   []LintIssue{{Line: 1}},
		},
		nil,
	}

	filtered, err := FilterByDiff(results, sampleDiff)
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	got := filtered[0]
	assert.True(t, got.Valid, "the error sits on an unchanged line")
	assert.Empty(t, got.Errors)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, 4, got.Warnings[0].Line)

	assert.Len(t, results[0].Errors, 1, "input must not be modified")
}

func TestFilterByDiff_Invalid(t *testing.T) {
	_, err := FilterByDiff(nil, "diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ bogus @@\n")
	assert.ErrorIs(t, err, ErrInvalidDiff)
}

func TestAddedLines_Lookup(t *testing.T) {
	added := AddedLines{"src/Page.tsx": {1: true}}

	_, ok := added.lookup("src/Page.tsx")
	assert.True(t, ok)
	_, ok = added.lookup("/abs/repo/src/Page.tsx")
	assert.True(t, ok)
	_, ok = added.lookup("Page.tsx")
	assert.True(t, ok)
	_, ok = added.lookup("/abs/other/xsrc/Page.tsx")
	assert.False(t, ok)
}

func TestAddedLines_Lookup_LongestSuffixWins(t *testing.T) {
	added := AddedLines{
		"a.tsx":     {1: true},
		"src/a.tsx": {2: true},
		"b/a.tsx":   {3: true},
	}

	for i := 0; i < 50; i++ {
		lines, ok := added.lookup("/repo/src/a.tsx")
		require.True(t, ok)
		assert.Equal(t, map[int]bool{2: true}, lines)
	}
}
