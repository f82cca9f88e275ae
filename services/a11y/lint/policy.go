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
	"strings"
)

// =============================================================================
// RULE POLICY
// =============================================================================

// RulePolicy overrides rule severities.
//
// Description:
//
//	Patterns match the issue's RuleID ("rule/Kind"). A pattern matches
//	exactly, as a hierarchy prefix ("a11y-heading-in-sectioning-content"
//	matches every kind of that rule), or as a code prefix followed by a
//	digit. Matching is case-insensitive.
//
// Thread Safety: Treat as immutable after creation.
type RulePolicy struct {
	// BlockOn patterns are raised to errors.
	BlockOn []string `yaml:"block_on,omitempty" json:"block_on,omitempty"`

	// WarnOn patterns are set to warnings.
	WarnOn []string `yaml:"warn_on,omitempty" json:"warn_on,omitempty"`

	// Ignore patterns are dropped.
	Ignore []string `yaml:"ignore,omitempty" json:"ignore,omitempty"`
}

func anyMatch(rule string, patterns []string) bool {
	rule = strings.ToLower(rule)
	for _, pattern := range patterns {
		if matchesRule(rule, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// ShouldBlock returns true if the rule matches a BlockOn pattern.
func (p *RulePolicy) ShouldBlock(rule string) bool {
	return anyMatch(rule, p.BlockOn)
}

// ShouldWarn returns true if the rule matches a WarnOn pattern.
func (p *RulePolicy) ShouldWarn(rule string) bool {
	return anyMatch(rule, p.WarnOn)
}

// ShouldIgnore returns true if the rule matches an Ignore pattern.
func (p *RulePolicy) ShouldIgnore(rule string) bool {
	return anyMatch(rule, p.Ignore)
}

// GetSeverity returns the policy severity for a rule.
//
// Description:
//
//	Ignore takes precedence, then BlockOn, then WarnOn. Rules matching
//	none of them keep fallback, the rule's own severity.
//
// Inputs:
//
//	rule - The issue's RuleID
//	fallback - Severity to use when no pattern matches
//
// Outputs:
//
//	Severity - The severity level for the rule
func (p *RulePolicy) GetSeverity(rule string, fallback Severity) Severity {
	if p.ShouldIgnore(rule) {
		return SeverityInfo
	}
	if p.ShouldBlock(rule) {
		return SeverityError
	}
	if p.ShouldWarn(rule) {
		return SeverityWarning
	}
	return fallback
}

// IsEmpty reports whether the policy has no patterns.
func (p *RulePolicy) IsEmpty() bool {
	return p == nil || len(p.BlockOn)+len(p.WarnOn)+len(p.Ignore) == 0
}

// matchesRule checks if a rule matches a pattern.
// Examples:
//   - "a11y-x/Kind" matches "a11y-x/Kind"
//   - "a11y-x/Kind" matches "a11y-x" (hierarchy)
//   - "A11Y2" matches "A11Y" (code prefix)
func matchesRule(rule, pattern string) bool {
	if pattern == "" {
		return false
	}
	if rule == pattern {
		return true
	}
	if strings.HasPrefix(rule, pattern+"/") {
		return true
	}
	if strings.HasPrefix(rule, pattern) && len(rule) > len(pattern) {
		next := rule[len(pattern)]
		if next >= '0' && next <= '9' {
			return true
		}
	}
	return false
}

// ApplyPolicy buckets issues by severity after applying policy.
//
// Description:
//
//	Ignored issues are dropped. A nil policy keeps each issue's own
//	severity. Order within each bucket follows the input order.
//
// Inputs:
//
//	issues - Issues carrying their rule's default severity
//	policy - The policy to apply, may be nil
//
// Outputs:
//
//	errors - Issues that block
//	warnings - Issues that warn
//	infos - Informational issues
func ApplyPolicy(issues []LintIssue, policy *RulePolicy) (errors, warnings, infos []LintIssue) {
	errors = make([]LintIssue, 0)
	warnings = make([]LintIssue, 0)
	infos = make([]LintIssue, 0)

	for _, issue := range issues {
		if policy != nil {
			id := issue.RuleID()
			if policy.ShouldIgnore(id) {
				continue
			}
			issue.Severity = policy.GetSeverity(id, issue.Severity)
		}

		switch issue.Severity {
		case SeverityError:
			errors = append(errors, issue)
		case SeverityWarning:
			warnings = append(warnings, issue)
		default:
			infos = append(infos, issue)
		}
	}

	return errors, warnings, infos
}
