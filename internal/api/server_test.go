// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/passport/internal/api"
	"github.com/taibuivan/passport/internal/platform/config"
	"github.com/taibuivan/passport/internal/platform/mailer"
	"github.com/taibuivan/passport/internal/platform/metrics"
	"github.com/taibuivan/passport/internal/platform/middleware"
	"github.com/taibuivan/passport/internal/platform/sec"
	"github.com/taibuivan/passport/internal/users/account"
	"github.com/taibuivan/passport/internal/users/auth"
)

// # Fixtures

func newTestServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()
	handler, _ := newTestServerWithMetrics(t, deps)
	return handler
}

func newTestServerWithMetrics(t *testing.T, deps api.HealthDependencies) (http.Handler, *metrics.Auth) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	hasher, err := sec.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := sec.NewTokenCodec([]byte(strings.Repeat("s", sec.MinSigningKeyLength)), time.Hour, "passport.app", clock)
	require.NoError(t, err)

	accounts := auth.NewMemoryAccountRepository(clock)
	counters := metrics.NewAuth()

	authService := auth.NewService(auth.Dependencies{
		Accounts: accounts,
		Hasher:   hasher,
		Tokens:   codec,
		Mailer:   mailer.NewLogMailer(logger),
		Clock:    clock,
		Metrics:  counters,
	}, auth.Settings{ResetTTL: 10 * time.Minute, FrontendURL: "https://app.passport.dev"})
	guard := middleware.RequireSession(codec, authService)

	liveness, readiness := api.NewHealthHandlers(deps, logger)

	cfg := &config.Config{
		ServerPort:     "0",
		Environment:    "production",
		AllowedOrigins: []string{"https://app.passport.dev"},
	}

	server := api.NewServer(cfg, logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, guard),
		Account:   account.NewHandler(account.NewService(accounts, nil, clock), guard),
	})
	return server.Handler(), counters
}

func serve(handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

// # Tests

/*
TestServer_Health checks the liveness and readiness probes.
*/
func TestServer_Health(t *testing.T) {
	t.Run("Liveness", func(t *testing.T) {
		handler := newTestServer(t, api.HealthDependencies{})

		recorder := serve(handler, http.MethodGet, "/health", "", "")
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"data":{"status":"ok","message":"Server is running"}}`, recorder.Body.String())
	})

	t.Run("Ready when every dependency answers", func(t *testing.T) {
		handler := newTestServer(t, api.HealthDependencies{
			CheckDatabase: func(context.Context) error { return nil },
			CheckCache:    func(context.Context) error { return nil },
		})

		recorder := serve(handler, http.MethodGet, "/ready", "", "")
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"status":"ready"`)
	})

	t.Run("Degraded when a dependency fails", func(t *testing.T) {
		handler := newTestServer(t, api.HealthDependencies{
			CheckDatabase: func(context.Context) error { return nil },
			CheckCache:    func(context.Context) error { return errors.New("connection refused") },
		})

		recorder := serve(handler, http.MethodGet, "/ready", "", "")
		require.Equal(t, http.StatusServiceUnavailable, recorder.Code)

		var body struct {
			Data struct {
				Status string `json:"status"`
				Checks []struct {
					Name  string `json:"name"`
					OK    bool   `json:"ok"`
					Error string `json:"error"`
				} `json:"checks"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Data.Status)
		require.Len(t, body.Data.Checks, 2)
		assert.True(t, body.Data.Checks[0].OK)
		assert.False(t, body.Data.Checks[1].OK)
		assert.Equal(t, "redis", body.Data.Checks[1].Name)
	})
}

/*
TestServer_Routes exercises the full chain from registration to the profile
routes and the metrics endpoint.
*/
func TestServer_Routes(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{})

	recorder := serve(handler, http.MethodPost, "/api/v1/auth/register", "",
		`{"username":"ada","email":"ada@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	var registered struct {
		Data struct {
			Token string         `json:"token"`
			User  map[string]any `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &registered))
	token := registered.Data.Token
	require.NotEmpty(t, token)

	t.Run("Profile routes accept the session", func(t *testing.T) {
		recorder := serve(handler, http.MethodGet, "/api/v1/users/me", token, "")
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"username":"ada"`)
	})

	t.Run("Profile routes reject anonymous callers", func(t *testing.T) {
		recorder := serve(handler, http.MethodGet, "/api/v1/users/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Unknown route", func(t *testing.T) {
		recorder := serve(handler, http.MethodGet, "/api/v1/nowhere", "", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"code":"NOT_FOUND"`)
	})

	t.Run("Metrics are not served on the public router", func(t *testing.T) {
		recorder := serve(handler, http.MethodGet, "/metrics", "", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("CORS preflight from an allowed origin", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
		request.Header.Set("Origin", "https://app.passport.dev")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, "https://app.passport.dev", recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("CORS ignores foreign origins", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
		request.Header.Set("Origin", "https://evil.example")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	})
}

/*
TestServer_ResetRequestCountersMatch checks that a reset request for a
registered email and for an unknown one leave the same counter series.
*/
func TestServer_ResetRequestCountersMatch(t *testing.T) {
	scrape := func(t *testing.T, counters *metrics.Auth) string {
		t.Helper()
		recorder := httptest.NewRecorder()
		counters.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		var lines []string
		for _, line := range strings.Split(recorder.Body.String(), "\n") {
			if strings.HasPrefix(line, `passport_auth_events_total{event="reset_request"`) {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	}

	registered, registeredCounters := newTestServerWithMetrics(t, api.HealthDependencies{})
	recorder := serve(registered, http.MethodPost, "/api/v1/auth/register", "",
		`{"username":"ada","email":"ada@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	known := serve(registered, http.MethodPost, "/api/v1/auth/forgot-password", "", `{"email":"ada@example.com"}`)

	unregistered, unregisteredCounters := newTestServerWithMetrics(t, api.HealthDependencies{})
	unknown := serve(unregistered, http.MethodPost, "/api/v1/auth/forgot-password", "", `{"email":"nobody@example.com"}`)

	require.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.JSONEq(t, known.Body.String(), unknown.Body.String())

	knownSeries := scrape(t, registeredCounters)
	assert.Equal(t, `passport_auth_events_total{event="reset_request",outcome="success"} 1`, knownSeries)
	assert.Equal(t, knownSeries, scrape(t, unregisteredCounters))
}

/*
TestMetricsServer serves counters on a dedicated listener.
*/
func TestMetricsServer(t *testing.T) {
	counters := metrics.NewAuth()
	counters.Record(metrics.EventLogin, metrics.OutcomeSuccess)

	server := api.NewMetricsServer("127.0.0.1:0", counters.Handler(), slog.New(slog.NewJSONHandler(io.Discard, nil)))
	errCh, err := server.Start()
	require.NoError(t, err)
	require.NotEmpty(t, server.Addr())

	response, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(response.Body)
	require.NoError(t, response.Body.Close())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(body), `passport_auth_events_total{event="login",outcome="success"} 1`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))

	_, open := <-errCh
	assert.False(t, open)
}
