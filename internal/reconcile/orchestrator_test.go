package reconcile

import (
	"context"
	"errors"
	"testing"

	"carelink-sync/internal/models"
	"carelink-sync/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClientFetcher struct {
	clients []models.ClientRecord
	err     error
}

func (f *fakeClientFetcher) FetchClients(context.Context) ([]models.ClientRecord, error) {
	return f.clients, f.err
}

type syncEnv struct {
	patients *repository.MemoryPatientsRepo
	notes    *repository.MemoryNotesRepo
	users    *repository.MemoryUsersRepo
	fetcher  *fakeFetcher
	clients  *fakeClientFetcher
	stats    *Statistics
	sync     *Synchronizer
}

func newSyncEnv(t *testing.T) *syncEnv {
	t.Helper()
	env := &syncEnv{
		patients: repository.NewMemoryPatientsRepo(),
		notes:    repository.NewMemoryNotesRepo(),
		users:    repository.NewMemoryUsersRepo(),
		fetcher:  newFakeFetcher(),
		clients:  &fakeClientFetcher{},
		stats:    NewStatistics(),
	}
	logger := zap.NewNop()
	users := NewUserReconciler(env.users, env.stats)
	patients := NewPatientReconciler(env.patients, env.stats, logger)
	notes := NewNoteReconciler(env.fetcher, users, env.patients, env.notes,
		models.ValidComment, env.stats, logger, 2)
	env.sync = NewSynchronizer(env.clients, models.ValidClient, patients, notes, env.stats, logger)
	return env
}

func TestRun_EndToEnd(t *testing.T) {
	env := newSyncEnv(t)

	ext1, ext2 := uuid.New(), uuid.New()
	env.clients.clients = []models.ClientRecord{
		clientRec("A", "B", "ACTIVE", ext1),
		clientRec("C", "D", "ACTIVE", ext2),
	}
	c := comment(ext1, "checkup done", "jsmith")
	env.fetcher.comments[ext1] = []models.CommentRecord{c}

	env.sync.Run(context.Background())

	snap := env.stats.Snapshot()
	assert.Equal(t, int64(2), snap.NewPatients)
	assert.Equal(t, int64(1), snap.NewNotes)
	assert.Equal(t, int64(1), snap.NewUsers)

	note, err := env.notes.FindByCommentID(context.Background(), c.Guid)
	require.NoError(t, err)
	require.NotNil(t, note)
}

func TestRun_ClientFetchFailureIsSwallowed(t *testing.T) {
	env := newSyncEnv(t)
	env.clients.err = errors.New("connection refused")

	// must not panic and must not write anything
	env.sync.Run(context.Background())

	assert.Equal(t, Snapshot{}, env.stats.Snapshot())
	assert.Equal(t, 0, env.patients.Count())
	assert.Equal(t, 0, env.notes.Count())
}

func TestRun_InvalidClientsDroppedAndCounted(t *testing.T) {
	env := newSyncEnv(t)

	valid := clientRec("A", "B", "ACTIVE", uuid.New())
	invalid := clientRec("", "B", "ACTIVE", uuid.New()) // blank first name
	env.clients.clients = []models.ClientRecord{valid, invalid}

	env.sync.Run(context.Background())

	snap := env.stats.Snapshot()
	assert.Equal(t, int64(1), snap.InvalidClients)
	assert.Equal(t, int64(1), snap.NewPatients)
	assert.Equal(t, 1, env.patients.Count())
}

func TestRun_ResetsStatsBetweenRuns(t *testing.T) {
	env := newSyncEnv(t)
	env.clients.clients = []models.ClientRecord{clientRec("A", "B", "ACTIVE", uuid.New())}

	env.sync.Run(context.Background())
	require.Equal(t, int64(1), env.stats.Snapshot().NewPatients)

	// second run finds the patient in place: nothing new
	env.sync.Run(context.Background())
	assert.Equal(t, Snapshot{}, env.stats.Snapshot())
}

func TestRun_NoteWorkerFailureIsSwallowed(t *testing.T) {
	env := newSyncEnv(t)

	clientID := uuid.New()
	env.clients.clients = []models.ClientRecord{clientRec("A", "B", "ACTIVE", clientID)}
	// comment referencing a client nobody owns fails its worker block
	orphan := comment(uuid.New(), "orphan", "jsmith")
	env.fetcher.comments[clientID] = []models.CommentRecord{orphan}

	env.sync.Run(context.Background())

	// patient work before the failure is kept: partial progress is accepted
	assert.Equal(t, int64(1), env.stats.Snapshot().NewPatients)
	assert.Equal(t, 0, env.notes.Count())
}
