package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goaltick/internal/app"
	"goaltick/internal/config"
	"goaltick/internal/materialize"
	"goaltick/internal/notify"
	"goaltick/internal/store"
)

var webNow = time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	dir := t.TempDir()
	goalsFile := filepath.Join(dir, "goals.txt")
	require.NoError(t, os.WriteFile(goalsFile, []byte("daily | Drink Water | glasses | 2 | 1\n"), 0o600))

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.StorageDir = dir
	cfg.GoalsFile = goalsFile
	cfg.WindowDays = 7

	repo := store.NewMemoryRepo()
	now := func() time.Time { return webNow }
	mat := materialize.New(repo, materialize.WithWindow(cfg.WindowDays), materialize.WithNow(now))
	a := app.New(cfg, repo, mat, notify.LogSender{}, nil, now)
	require.NoError(t, a.UpdateGoals(context.Background()))

	return NewServer(cfg, a)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleGoals(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp goalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Daily, 1)
	assert.Equal(t, "Drink Water", resp.Daily[0].Description)
	assert.Equal(t, "daily", resp.Daily[0].Frequency)
}

func TestHandleGroups(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups?date=2026-09-02", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups?date=2030-01-01", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpcoming(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/upcoming?days=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp upcomingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Days)
	assert.Len(t, resp.Groups, 3)
}

func TestBasicAuthProtectsAPIButNotHealth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}
	s := newTestServer(t, cfg)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "/health stays open")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.SetBasicAuth("u", "p")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
