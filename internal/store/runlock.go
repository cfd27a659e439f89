package store

import (
	"context"
	"time"
)

const runLockKey = "carelink:sync:lock"

// RunLock KV-backed mutual exclusion for synchronization runs. Scheduled,
// forced and MQTT triggers all go through it so runs never overlap; the TTL
// recovers the lock if a holder dies mid-run.
type RunLock struct {
	kv  KV
	ttl time.Duration
}

func NewRunLock(kv KV, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RunLock{kv: kv, ttl: ttl}
}

// TryAcquire reports whether the caller now holds the lock
func (l *RunLock) TryAcquire(ctx context.Context) (bool, error) {
	return l.kv.SetNX(ctx, runLockKey, "1", l.ttl)
}

func (l *RunLock) Release(ctx context.Context) error {
	return l.kv.Del(ctx, runLockKey)
}
