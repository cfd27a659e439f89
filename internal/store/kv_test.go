package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV_GetMissesOnUnknownKey(t *testing.T) {
	kv := NewMemoryKV()

	_, err := kv.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryKV_SetThenGet(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", 0))

	value, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}

func TestMemoryKV_ExpiredValueMisses(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryKV_SetNXRespectsLiveKey(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	ok, err := kv.SetNX(ctx, "k", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = kv.SetNX(ctx, "k", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	value, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "first", value)
}

func TestMemoryKV_SetNXReclaimsExpiredKey(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	ok, err := kv.SetNX(ctx, "k", "first", time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
	time.Sleep(10 * time.Millisecond)

	ok, err = kv.SetNX(ctx, "k", "second", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryKV_Del(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", 0))
	require.NoError(t, kv.Del(ctx, "k"))

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRunLock_SecondAcquireFailsUntilRelease(t *testing.T) {
	lock := NewRunLock(NewMemoryKV(), time.Minute)
	ctx := context.Background()

	ok, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = lock.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx))

	ok, err = lock.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunLock_TTLRecoversAbandonedLock(t *testing.T) {
	lock := NewRunLock(NewMemoryKV(), time.Millisecond)
	ctx := context.Background()

	ok, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	time.Sleep(10 * time.Millisecond)

	ok, err = lock.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
