package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"carelink-sync/internal/store"

	"go.uber.org/zap"
)

const lastReportKey = "carelink:sync:last_report"

// RunReport last completed run, persisted for the status endpoint
type RunReport struct {
	FinishedAt time.Time `json:"finishedAt"`
	Stats      Snapshot  `json:"stats"`
	Message    string    `json:"message"`
}

// Runner guards the Synchronizer with the run lock and persists each run's
// report. Every trigger path (scheduler, HTTP force, MQTT) goes through
// TryRun, so two triggers can never overlap a run.
type Runner struct {
	sync   *Synchronizer
	stats  *Statistics
	lock   *store.RunLock
	kv     store.KV
	logger *zap.Logger
}

func NewRunner(sync *Synchronizer, stats *Statistics, lock *store.RunLock, kv store.KV, logger *zap.Logger) *Runner {
	return &Runner{sync: sync, stats: stats, lock: lock, kv: kv, logger: logger}
}

// TryRun runs one synchronization unless another run holds the lock.
// Reports whether a run was executed.
func (r *Runner) TryRun(ctx context.Context) bool {
	acquired, err := r.lock.TryAcquire(ctx)
	if err != nil {
		r.logger.Error("Failed to acquire run lock", zap.Error(err))
		return false
	}
	if !acquired {
		r.logger.Info("Synchronization already in progress, skipping trigger")
		return false
	}
	defer func() {
		if err := r.lock.Release(ctx); err != nil {
			r.logger.Warn("Failed to release run lock", zap.Error(err))
		}
	}()

	r.sync.Run(ctx)
	r.storeReport(ctx)
	return true
}

// LastReport returns the most recent run report; (nil, nil) before any run
func (r *Runner) LastReport(ctx context.Context) (*RunReport, error) {
	raw, err := r.kv.Get(ctx, lastReportKey)
	if err == store.ErrMiss {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report RunReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *Runner) storeReport(ctx context.Context) {
	report := RunReport{
		FinishedAt: time.Now().UTC(),
		Stats:      r.stats.Snapshot(),
		Message:    r.stats.Message(),
	}
	raw, err := json.Marshal(report)
	if err != nil {
		r.logger.Error("Failed to encode run report", zap.Error(err))
		return
	}
	if err := r.kv.Set(ctx, lastReportKey, string(raw), 0); err != nil {
		r.logger.Error("Failed to store run report", zap.Error(err))
	}
}
