// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/a11ylint/services/a11y"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lint HTTP API",
		Long: `Start the HTTP lint API.

Endpoints:
  POST /v1/a11y/lint    {"filename": "Page.tsx", "content": "...", "diff": "..."}
  GET  /v1/a11y/rules
  GET  /v1/a11y/health
  GET  /metrics         (when telemetry.metrics is prometheus)`,
		Example: `  a11ylint serve --addr 127.0.0.1:12230
  curl -s localhost:12230/v1/a11y/lint -d '{"filename":"a.tsx","content":"<div onClick={f}/>"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if debug {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			provider, err := a.telemetry(ctx, true)
			if err != nil {
				return err
			}
			defer provider.Shutdown(context.Background())

			svc, err := a.service(a11y.ServiceOptions{InMemoryCache: true})
			if err != nil {
				return err
			}
			defer svc.Close()

			router := a11y.NewRouter(svc, a11y.RouterOptions{Metrics: provider.MetricsHandler()})
			if err := a11y.Serve(ctx, a.cfg.Server.Addr, router, nil); err != nil {
				return failure(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable gin debug mode")
	return cmd
}
