package slogx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewReturnsLoggerForAnyConfig(t *testing.T) {
	cases := []Config{
		{Service: "comitte", Version: "test", Env: "dev", Level: "debug", Format: "text"},
		{Service: "comitte", Version: "test", Env: "prod", Level: "warn", Format: "json"},
		{Service: "comitte", Version: "test", Env: "prod", Level: "nonsense", Format: "nonsense"},
	}

	for _, cfg := range cases {
		logger := New(cfg)
		require.NotNil(t, logger)
		require.Same(t, logger, slog.Default())
	}
}

func TestLevelFor(t *testing.T) {
	require.Equal(t, slog.LevelDebug, levelFor("DEBUG"))
	require.Equal(t, slog.LevelWarn, levelFor("warning"))
	require.Equal(t, slog.LevelError, levelFor("error"))
	require.Equal(t, slog.LevelInfo, levelFor(""))
	require.Equal(t, slog.LevelInfo, levelFor("verbose"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	require.Same(t, slog.Default(), FromContext(context.Background()))

	scoped := slog.Default().With("scope", "test")
	ctx := WithContext(context.Background(), scoped)
	require.Same(t, scoped, FromContext(ctx))
}

func TestHTTPMiddlewareAttachesRequestLogger(t *testing.T) {
	var seen *slog.Logger

	handler := HTTPMiddleware(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	require.NotSame(t, slog.Default(), seen)
}
