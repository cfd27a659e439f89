package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carelink-sync/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	busy      bool
	runs      int
	report    *reconcile.RunReport
	reportErr error
}

func (f *fakeRunner) TryRun(ctx context.Context) bool {
	if f.busy {
		return false
	}
	f.runs++
	return true
}

func (f *fakeRunner) LastReport(ctx context.Context) (*reconcile.RunReport, error) {
	return f.report, f.reportErr
}

func newTestRouter(runner *fakeRunner) *Router {
	logger := zap.NewNop()
	router := NewRouter(logger)
	router.RegisterSyncRoutes(NewSyncHandler(runner, logger))
	return router
}

func TestForceSynchronization_RunsAndReportsSuccess(t *testing.T) {
	runner := &fakeRunner{}
	router := newTestRouter(runner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/synchronization/force", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, runner.runs)

	var body Result[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ResultSuccess, body.Code)
	assert.Equal(t, "synchronization finished", body.Result)
}

func TestForceSynchronization_ConflictWhenRunInProgress(t *testing.T) {
	runner := &fakeRunner{busy: true}
	router := newTestRouter(runner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/synchronization/force", nil))

	require.Equal(t, http.StatusConflict, rec.Code)

	var body Result[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ResultError, body.Code)
	assert.Equal(t, 0, runner.runs)
}

func TestForceSynchronization_RejectsGet(t *testing.T) {
	router := newTestRouter(&fakeRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/synchronization/force", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatus_NotFoundBeforeFirstRun(t *testing.T) {
	router := newTestRouter(&fakeRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/synchronization/status", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatus_ReturnsLastReport(t *testing.T) {
	runner := &fakeRunner{
		report: &reconcile.RunReport{
			FinishedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Stats:      reconcile.Snapshot{NewPatients: 3, NewNotes: 7},
		},
	}
	router := newTestRouter(runner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/synchronization/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body Result[reconcile.RunReport]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ResultSuccess, body.Code)
	assert.Equal(t, int64(3), body.Result.Stats.NewPatients)
	assert.Equal(t, int64(7), body.Result.Stats.NewNotes)
}

func TestStatus_StoreFailureIsServerError(t *testing.T) {
	runner := &fakeRunner{reportErr: errors.New("kv unreachable")}
	router := newTestRouter(runner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/synchronization/status", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
