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
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/config"
	"github.com/AleutianAI/a11ylint/services/a11y/rules"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const pageSource = `export const Page = () => (
  <Section>
    <Heading>Title</Heading>
    <Heading>Again</Heading>
    <div onClick={open}>x</div>
  </Section>
)
`

func newTestService(t *testing.T, mutate func(*config.Config)) *Service {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = true
	if mutate != nil {
		mutate(cfg)
	}
	svc, err := NewService(cfg, ServiceOptions{InMemoryCache: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func postLint(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/a11y/lint", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleLint_ReportsFindings(t *testing.T) {
	router := NewRouter(newTestService(t, nil), RouterOptions{})

	w := postLint(t, router, LintRequest{Filename: "src/Page.tsx", Content: pageSource})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp LintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, w.Header().Get("X-Request-ID"), resp.RequestID)
	require.NotNil(t, resp.Result)
	assert.False(t, resp.Result.Valid)
	require.Len(t, resp.Result.Errors, 1)
	assert.Equal(t, string(rules.KindNonInteractiveHandler), resp.Result.Errors[0].Kind)
	assert.Equal(t, 5, resp.Result.Errors[0].Line)
	require.Len(t, resp.Result.Warnings, 1)
	assert.False(t, resp.Result.Cached)

	w = postLint(t, router, LintRequest{Filename: "src/Other.tsx", Content: pageSource})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Result.Cached)
	assert.Equal(t, "src/Other.tsx", resp.Result.FilePath)
}

func TestHandleLint_EchoesRequestID(t *testing.T) {
	router := NewRouter(newTestService(t, nil), RouterOptions{})

	req := httptest.NewRequest(http.MethodPost, "/v1/a11y/lint",
		strings.NewReader(`{"filename":"a.tsx","content":"const a = <div/>"}`))
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestHandleLint_DiffFilter(t *testing.T) {
	router := NewRouter(newTestService(t, nil), RouterOptions{})

	diffText := "--- a/src/Page.tsx\n" +
		"+++ b/src/Page.tsx\n" +
		"@@ -1,2 +1,3 @@\n" +
		" line1\n" +
		"+line2\n" +
		" line3\n"

	w := postLint(t, router, LintRequest{Filename: "src/Page.tsx", Content: pageSource, Diff: diffText})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Result.Errors)
	assert.Empty(t, resp.Result.Warnings)
	assert.True(t, resp.Result.Valid)
}

func TestHandleLint_DiffUntouchedFile(t *testing.T) {
	router := NewRouter(newTestService(t, nil), RouterOptions{})

	diffText := "--- a/src/Other.tsx\n" +
		"+++ b/src/Other.tsx\n" +
		"@@ -1,1 +1,2 @@\n" +
		" line1\n" +
		"+line2\n"

	w := postLint(t, router, LintRequest{Filename: "src/Page.tsx", Content: pageSource, Diff: diffText})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var raw struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	for _, field := range []string{"errors", "warnings", "infos"} {
		assert.JSONEq(t, "[]", string(raw.Result[field]), field)
	}
	assert.JSONEq(t, "true", string(raw.Result["valid"]))
}

func TestHandleLint_Errors(t *testing.T) {
	svc := newTestService(t, func(cfg *config.Config) {
		cfg.MaxFileSize = 64
		cfg.Server.MaxBodyBytes = 1024
	})
	router := NewRouter(svc, RouterOptions{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"invalid json", `{"filename":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing filename", `{"content":"x"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unsupported", `{"filename":"a.py","content":"x"}`, http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE"},
		{"too large for parser", `{"filename":"a.tsx","content":"` + strings.Repeat("a", 200) + `"}`, http.StatusUnprocessableEntity, "PARSE_FAILED"},
		{"body too large", `{"filename":"a.tsx","content":"` + strings.Repeat("a", 2000) + `"}`, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"},
		{"bad diff", `{"filename":"a.tsx","content":"const a = 1","diff":"@@ bogus @@"}`, http.StatusBadRequest, "INVALID_DIFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/a11y/lint", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code, w.Body.String())
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestHandleRules(t *testing.T) {
	svc := newTestService(t, func(cfg *config.Config) {
		cfg.Rules.Disabled = []string{rules.HeadingOutlineName}
	})
	router := NewRouter(svc, RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/v1/a11y/rules", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp RulesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rules, 1)
	assert.Equal(t, rules.RolePresentationName, resp.Rules[0].Name)
	assert.NotEmpty(t, resp.Rules[0].Description)
	assert.Contains(t, resp.Extensions, ".tsx")
	assert.Contains(t, resp.Extensions, ".mdx")
}

func TestHandleHealth(t *testing.T) {
	router := NewRouter(newTestService(t, nil), RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/v1/a11y/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceVersion, resp.Version)
	assert.True(t, resp.CacheEnabled)
}

func TestRateLimit(t *testing.T) {
	svc := newTestService(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 0.001
		cfg.Server.Burst = 2
	})
	router := NewRouter(svc, RouterOptions{})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/a11y/rules", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/v1/a11y/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "health is not rate limited")
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("a11ylint_up 1\n"))
	})
	router := NewRouter(newTestService(t, nil), RouterOptions{Metrics: metrics})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a11ylint_up 1\n", w.Body.String())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	router := NewRouter(newTestService(t, nil), RouterOptions{})
	ctx, cancel := context.WithCancel(context.Background())

	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", router, func(a net.Addr) { addrCh <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr.String() + "/v1/a11y/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewService_NoCache(t *testing.T) {
	svc, err := NewService(nil, ServiceOptions{})
	require.NoError(t, err)
	defer svc.Close()
	assert.Nil(t, svc.Cache())
	assert.Len(t, svc.Runner().Rules(), len(rules.Names()))
}
