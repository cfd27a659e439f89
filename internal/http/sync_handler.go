package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"carelink-sync/internal/reconcile"

	"go.uber.org/zap"
)

// RunTrigger starts a synchronization run unless one is already in progress
type RunTrigger interface {
	TryRun(ctx context.Context) bool
	LastReport(ctx context.Context) (*reconcile.RunReport, error)
}

// SyncHandler exposes the manual trigger and the last run report
type SyncHandler struct {
	runner RunTrigger
	logger *zap.Logger
}

func NewSyncHandler(runner RunTrigger, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{runner: runner, logger: logger}
}

// ForceSynchronization runs one synchronization synchronously. A run never
// propagates an error, so the only failure mode here is a run already being
// in progress.
func (s *SyncHandler) ForceSynchronization(w http.ResponseWriter, req *http.Request) {
	if !s.runner.TryRun(req.Context()) {
		writeJSON(w, http.StatusConflict, Fail("synchronization already in progress"))
		return
	}
	writeJSON(w, http.StatusOK, Ok("synchronization finished"))
}

// Status returns the report of the most recent run
func (s *SyncHandler) Status(w http.ResponseWriter, req *http.Request) {
	report, err := s.runner.LastReport(req.Context())
	if err != nil {
		s.logger.Error("Failed to load last run report", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load last run report"))
		return
	}
	if report == nil {
		writeJSON(w, http.StatusNotFound, Fail("no synchronization has run yet"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(report))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
