// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package observability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, ready ReadinessChecker) *Server {
	t.Helper()
	s := NewServer("127.0.0.1:0", ready)
	_, err := s.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // local test server
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Liveness(t *testing.T) {
	s := startServer(t, nil)

	status, body := getBody(t, fmt.Sprintf("http://%s/healthz/liveness", s.Addr()))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok\n", body)
}

func TestServer_Readiness(t *testing.T) {
	ready := false
	s := startServer(t, func() bool { return ready })

	url := fmt.Sprintf("http://%s/healthz/readiness", s.Addr())

	status, _ := getBody(t, url)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	ready = true
	status, _ = getBody(t, url)
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := startServer(t, nil)

	s.Metrics().RecordLogin("success")
	s.Metrics().RecordLogin("failure")
	s.Metrics().RecordResetRequest()
	s.Metrics().ObserveRequest("/api/accounts/login", http.MethodPost, http.StatusOK, 5*time.Millisecond)

	status, body := getBody(t, fmt.Sprintf("http://%s/metrics", s.Addr()))
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, `accounts_logins_total{outcome="success"} 1`))
	assert.True(t, strings.Contains(body, `accounts_logins_total{outcome="failure"} 1`))
	assert.True(t, strings.Contains(body, "accounts_reset_requests_total 1"))
	assert.True(t, strings.Contains(body, `accounts_http_requests_total{method="POST",route="/api/accounts/login",status="200"} 1`))
}

func TestServer_StartTwice(t *testing.T) {
	s := startServer(t, nil)

	_, err := s.Start()
	require.Error(t, err)
}

func TestServer_StopIdempotent(t *testing.T) {
	s := NewServer("127.0.0.1:0", nil)
	_, err := s.Start()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordLogin("success")
	m.RecordResetRequest()
	m.ObserveRequest("/x", http.MethodGet, http.StatusOK, time.Millisecond)
}
