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
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterOptions configure NewRouter.
type RouterOptions struct {
	// Metrics is served at GET /metrics when non-nil.
	Metrics http.Handler
}

// NewRouter builds the gin engine for `a11ylint serve`.
//
// Endpoints:
//
//	POST /v1/a11y/lint - Lint one file's content
//	GET  /v1/a11y/rules - List enabled rules
//	GET  /v1/a11y/health - Liveness
//	GET  /metrics - Prometheus scrape, when enabled
//
// Middleware order: recovery, tracing, request ID, logging, then the
// rate limit and body cap on /v1 only. Health and metrics stay reachable
// under load.
func NewRouter(svc *Service, opts RouterOptions) *gin.Engine {
	server := svc.Config().Server

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("a11ylint"))
	router.Use(RequestID(), RequestLogger())

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	handlers := NewHandlers(svc)
	router.GET("/v1/a11y/health", handlers.HandleHealth)

	v1 := router.Group("/v1", RateLimit(server.RateLimit, server.Burst), MaxBodyBytes(server.MaxBodyBytes))
	v1.POST("/a11y/lint", handlers.HandleLint)
	v1.GET("/a11y/rules", handlers.HandleRules)

	return router
}
