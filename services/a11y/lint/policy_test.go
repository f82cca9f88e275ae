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
)

const headingRule = "a11y-heading-in-sectioning-content"

func TestRulePolicy_ShouldBlock(t *testing.T) {
	policy := &RulePolicy{
		BlockOn: []string{headingRule + "/DuplicatePageHeading", "A11Y"},
	}

	tests := []struct {
		rule string
		want bool
	}{
		{headingRule + "/DuplicatePageHeading", true},
		{"A11Y100", true}, // code prefix
		{headingRule + "/RootHeadingNoOutline", false},
		{headingRule, false},
		{"a11y-other", false},
	}

	for _, tt := range tests {
		got := policy.ShouldBlock(tt.rule)
		if got != tt.want {
			t.Errorf("ShouldBlock(%q) = %v, want %v", tt.rule, got, tt.want)
		}
	}
}

func TestRulePolicy_HierarchyMatch(t *testing.T) {
	policy := &RulePolicy{
		WarnOn: []string{headingRule},
	}

	if !policy.ShouldWarn(headingRule + "/DuplicateSectionHeading") {
		t.Error("rule name should match every kind of the rule")
	}
	if policy.ShouldWarn(headingRule + "-extra/Kind") {
		t.Error("hierarchy match must stop at '/'")
	}
}

func TestRulePolicy_GetSeverity(t *testing.T) {
	policy := &RulePolicy{
		BlockOn: []string{"a/Block"},
		WarnOn:  []string{"a/Warn"},
		Ignore:  []string{"a/Ignore"},
	}

	tests := []struct {
		rule     string
		fallback Severity
		want     Severity
	}{
		{"a/Block", SeverityWarning, SeverityError},
		{"a/Warn", SeverityError, SeverityWarning},
		{"a/Ignore", SeverityError, SeverityInfo},
		{"a/Other", SeverityError, SeverityError},
		{"a/Other", SeverityWarning, SeverityWarning},
	}

	for _, tt := range tests {
		got := policy.GetSeverity(tt.rule, tt.fallback)
		if got != tt.want {
			t.Errorf("GetSeverity(%q, %v) = %v, want %v", tt.rule, tt.fallback, got, tt.want)
		}
	}
}

func TestRulePolicy_CaseInsensitive(t *testing.T) {
	policy := &RulePolicy{
		BlockOn: []string{"A11Y-Heading-In-Sectioning-Content"},
	}

	if !policy.ShouldBlock(headingRule + "/DuplicatePageHeading") {
		t.Error("ShouldBlock should be case-insensitive")
	}
}

func TestRulePolicy_IsEmpty(t *testing.T) {
	var nilPolicy *RulePolicy
	if !nilPolicy.IsEmpty() {
		t.Error("nil policy should be empty")
	}
	if !(&RulePolicy{}).IsEmpty() {
		t.Error("zero policy should be empty")
	}
	if (&RulePolicy{Ignore: []string{"x"}}).IsEmpty() {
		t.Error("policy with patterns should not be empty")
	}
}

func TestMatchesRule_EmptyPattern(t *testing.T) {
	if matchesRule("anything", "") {
		t.Error("empty pattern must not match")
	}
}

func TestApplyPolicy(t *testing.T) {
	policy := &RulePolicy{
		BlockOn: []string{headingRule + "/DuplicatePageHeading"},
		Ignore:  []string{headingRule + "/RedundantTagOverride"},
	}

	issues := []LintIssue{
		{Rule: headingRule, Kind: "DuplicatePageHeading", Severity: SeverityWarning},
		{Rule: headingRule, Kind: "RootHeadingNoOutline", Severity: SeverityWarning},
		{Rule: headingRule, Kind: "RedundantTagOverride", Severity: SeverityWarning},
		{Rule: "a11y-delegate-element-has-role-presentation", Kind: "NonInteractiveHandler", Severity: SeverityError},
	}

	errors, warnings, infos := ApplyPolicy(issues, policy)

	if len(errors) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(errors))
	}
	if errors[0].Kind != "DuplicatePageHeading" || errors[0].Severity != SeverityError {
		t.Errorf("DuplicatePageHeading should be raised to error, got %+v", errors[0])
	}
	if errors[1].Kind != "NonInteractiveHandler" {
		t.Errorf("rule default severity should be kept, got %+v", errors[1])
	}
	if len(warnings) != 1 || warnings[0].Kind != "RootHeadingNoOutline" {
		t.Errorf("Expected RootHeadingNoOutline warning, got %+v", warnings)
	}
	if len(infos) != 0 {
		t.Errorf("Expected ignored issue to be dropped, got %+v", infos)
	}
}

func TestApplyPolicy_NilPolicy(t *testing.T) {
	issues := []LintIssue{
		{Rule: "a", Severity: SeverityError},
		{Rule: "b", Severity: SeverityWarning},
		{Rule: "c", Severity: SeverityInfo},
	}

	errors, warnings, infos := ApplyPolicy(issues, nil)

	if len(errors) != 1 || len(warnings) != 1 || len(infos) != 1 {
		t.Errorf("nil policy should keep own severities, got %d/%d/%d", len(errors), len(warnings), len(infos))
	}
}
