package reconcile

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// Statistics counters for one synchronization run. Reset at run start and
// reported at run end; partition workers increment concurrently, so every
// counter is atomic. Always injected, never a package-level singleton.
type Statistics struct {
	newPatients    atomic.Int64
	newClients     atomic.Int64
	invalidClients atomic.Int64
	newUsers       atomic.Int64
	invalidComments atomic.Int64
	newNotes       atomic.Int64
	updatedNotes   atomic.Int64
}

func NewStatistics() *Statistics {
	return &Statistics{}
}

func (s *Statistics) AddNewPatients(n int)     { s.newPatients.Add(int64(n)) }
func (s *Statistics) AddNewClients(n int)      { s.newClients.Add(int64(n)) }
func (s *Statistics) AddInvalidClients(n int)  { s.invalidClients.Add(int64(n)) }
func (s *Statistics) AddNewUsers(n int)        { s.newUsers.Add(int64(n)) }
func (s *Statistics) AddInvalidComments(n int) { s.invalidComments.Add(int64(n)) }
func (s *Statistics) AddNewNotes(n int)        { s.newNotes.Add(int64(n)) }
func (s *Statistics) AddUpdatedNotes(n int)    { s.updatedNotes.Add(int64(n)) }

func (s *Statistics) Reset() {
	s.newPatients.Store(0)
	s.newClients.Store(0)
	s.invalidClients.Store(0)
	s.newUsers.Store(0)
	s.invalidComments.Store(0)
	s.newNotes.Store(0)
	s.updatedNotes.Store(0)
}

// Snapshot point-in-time view of the counters
type Snapshot struct {
	NewPatients     int64 `json:"newPatients"`
	NewClients      int64 `json:"newClients"`
	InvalidClients  int64 `json:"invalidClients"`
	NewUsers        int64 `json:"newUsers"`
	InvalidComments int64 `json:"invalidComments"`
	NewNotes        int64 `json:"newNotes"`
	UpdatedNotes    int64 `json:"updatedNotes"`
}

func (s *Statistics) Snapshot() Snapshot {
	return Snapshot{
		NewPatients:     s.newPatients.Load(),
		NewClients:      s.newClients.Load(),
		InvalidClients:  s.invalidClients.Load(),
		NewUsers:        s.newUsers.Load(),
		InvalidComments: s.invalidComments.Load(),
		NewNotes:        s.newNotes.Load(),
		UpdatedNotes:    s.updatedNotes.Load(),
	}
}

// Message renders the human-readable run report
func (s *Statistics) Message() string {
	snap := s.Snapshot()
	return fmt.Sprintf(`
---------------- STATISTICS ----------------
New patients: %d
New clients: %d
Invalid clients: %d
New users: %d
Invalid comments: %d
New notes: %d
Updated notes: %d
---------------------------------------------
`,
		snap.NewPatients,
		snap.NewClients,
		snap.InvalidClients,
		snap.NewUsers,
		snap.InvalidComments,
		snap.NewNotes,
		snap.UpdatedNotes,
	)
}

// Report logs the seven counters as structured fields
func (s *Statistics) Report(logger *zap.Logger) {
	snap := s.Snapshot()
	logger.Info("Synchronization statistics",
		zap.Int64("new_patients", snap.NewPatients),
		zap.Int64("new_clients", snap.NewClients),
		zap.Int64("invalid_clients", snap.InvalidClients),
		zap.Int64("new_users", snap.NewUsers),
		zap.Int64("invalid_comments", snap.InvalidComments),
		zap.Int64("new_notes", snap.NewNotes),
		zap.Int64("updated_notes", snap.UpdatedNotes),
	)
}
