package reconcile

import (
	"context"
	"sync"
	"testing"

	"carelink-sync/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_CreatesOnce(t *testing.T) {
	users := repository.NewMemoryUsersRepo()
	stats := NewStatistics()
	rec := NewUserReconciler(users, stats)

	first, err := rec.GetOrCreate(context.Background(), "jsmith")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := rec.GetOrCreate(context.Background(), "jsmith")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, users.Count())
	assert.Equal(t, int64(1), stats.Snapshot().NewUsers)
}

func TestGetOrCreate_RaceSafe(t *testing.T) {
	users := repository.NewMemoryUsersRepo()
	stats := NewStatistics()
	rec := NewUserReconciler(users, stats)

	const callers = 32
	results := make([]*int64, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, err := rec.GetOrCreate(context.Background(), "racer")
			if err == nil {
				results[i] = &user.ID
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, users.Count())
	assert.Equal(t, int64(1), stats.Snapshot().NewUsers)
	for i, id := range results {
		require.NotNil(t, id, "caller %d failed", i)
		assert.Equal(t, *results[0], *id)
	}
}

func TestGetOrCreate_DistinctLogins(t *testing.T) {
	users := repository.NewMemoryUsersRepo()
	stats := NewStatistics()
	rec := NewUserReconciler(users, stats)

	for _, login := range []string{"a", "b", "c"} {
		_, err := rec.GetOrCreate(context.Background(), login)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, users.Count())
	assert.Equal(t, int64(3), stats.Snapshot().NewUsers)
}
