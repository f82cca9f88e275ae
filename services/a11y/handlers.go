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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// requestIDKey is the gin context key holding the request ID.
const requestIDKey = "a11ylint.request_id"

// Handlers serves the /v1/a11y endpoints.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for svc.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleLint handles POST /v1/a11y/lint.
//
// Description:
//
//	Lints one in-memory file. The filename extension picks the parser;
//	the file is never read from disk.
//
// Request Body:
//
//	LintRequest
//
// Response:
//
//	200 OK: LintResponse
//	400 Bad Request: Missing filename, invalid JSON, or invalid diff
//	413 Request Entity Too Large: Body or content over the limit
//	415 Unsupported Media Type: No parser for the extension
//	422 Unprocessable Entity: Parse failure
func (h *Handlers) HandleLint(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleLint")

	var req LintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")
			return
		}
		logger.Warn("Invalid request body", "error", err)
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Runner().LintContent(c.Request.Context(), []byte(req.Content), req.Filename)
	if err != nil {
		status, code := lintErrorStatus(err)
		logger.Warn("Lint failed", "filename", req.Filename, "error", err)
		abortWithError(c, status, code, err.Error())
		return
	}

	if req.Diff != "" {
		filtered, err := lint.FilterByDiff([]*lint.LintResult{result}, req.Diff)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_DIFF", err.Error())
			return
		}
		if len(filtered) == 0 {
			untouched := *result
			untouched.Valid = true
			untouched.Errors, untouched.Warnings, untouched.Infos = []lint.LintIssue{}, []lint.LintIssue{}, []lint.LintIssue{}
			result = &untouched
		} else {
			result = filtered[0]
		}
	}

	logger.Info("Lint complete",
		"filename", req.Filename,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
		"cached", result.Cached,
	)
	c.JSON(http.StatusOK, LintResponse{RequestID: requestID, Result: result})
}

func lintErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, lint.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE"
	case errors.Is(err, lint.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_REQUEST"
	default:
		var lintErr *lint.LintError
		if errors.As(err, &lintErr) {
			return http.StatusUnprocessableEntity, "PARSE_FAILED"
		}
		return http.StatusInternalServerError, "LINT_FAILED"
	}
}

// HandleRules handles GET /v1/a11y/rules.
func (h *Handlers) HandleRules(c *gin.Context) {
	getOrCreateRequestID(c)

	active := h.svc.Runner().Rules()
	infos := make([]RuleInfo, 0, len(active))
	for _, r := range active {
		infos = append(infos, RuleInfo{
			Name:        r.Name(),
			Description: r.Description(),
			Severity:    r.Severity(),
		})
	}
	c.JSON(http.StatusOK, RulesResponse{
		Rules:      infos,
		Extensions: h.svc.Runner().Extensions(),
	})
}

// HandleHealth handles GET /v1/a11y/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       ServiceVersion,
		UptimeSeconds: int64(h.svc.Uptime().Seconds()),
		CacheEnabled:  h.svc.Cache() != nil,
	})
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDKey, requestID)
	c.Header("X-Request-ID", requestID)
	return requestID
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: getOrCreateRequestID(c),
	})
}
