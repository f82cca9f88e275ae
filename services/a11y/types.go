// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package a11y

import (
	"github.com/AleutianAI/a11ylint/services/a11y/engine"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// LintRequest is the request body for POST /v1/a11y/lint.
type LintRequest struct {
	// Filename selects the parser by extension and labels issues. Required.
	Filename string `json:"filename" binding:"required"`

	// Content is the source text.
	Content string `json:"content"`

	// Diff is an optional unified diff. When set, only issues on added
	// lines of Filename are returned.
	Diff string `json:"diff,omitempty"`
}

// LintResponse is the response for POST /v1/a11y/lint.
type LintResponse struct {
	// RequestID echoes the X-Request-ID header.
	RequestID string `json:"request_id"`

	// Result is the lint result.
	Result *lint.LintResult `json:"result"`
}

// RuleInfo describes one enabled rule.
type RuleInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Severity    engine.Severity `json:"severity"`
}

// RulesResponse is the response for GET /v1/a11y/rules.
type RulesResponse struct {
	Rules []RuleInfo `json:"rules"`

	// Extensions are the file extensions the service can lint.
	Extensions []string `json:"extensions"`
}

// HealthResponse is the response for GET /v1/a11y/health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	CacheEnabled  bool   `json:"cache_enabled"`
}

// ErrorResponse is returned for every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}
