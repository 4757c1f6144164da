package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
)

func newChain(logs *bytes.Buffer) func(http.Handler) http.Handler {
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return Chain(logger, ferrors.NewHTTPErrorAdapter(logger))
}

func TestChainLogsRequests(t *testing.T) {
	var logs bytes.Buffer
	h := newChain(&logs)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, logs.String(), "path=/health")
	assert.Contains(t, logs.String(), "status=418")
}

func TestChainRecoversPanics(t *testing.T) {
	var logs bytes.Buffer
	h := newChain(&logs)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/verify", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, logs.String(), "HTTP handler panic")
}
