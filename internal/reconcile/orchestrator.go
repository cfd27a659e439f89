package reconcile

import (
	"context"
	"fmt"

	"carelink-sync/internal/models"

	"go.uber.org/zap"
)

// ClientFetcher pulls the legacy client roster
type ClientFetcher interface {
	FetchClients(ctx context.Context) ([]models.ClientRecord, error)
}

// Synchronizer sequences one full run: fetch, validate, patients, notes.
// Run is the single swallow-all boundary: whatever fails below it is logged
// and dropped, the statistics report always goes out, and nothing surfaces
// to the trigger. This is operational policy, not an accident.
type Synchronizer struct {
	clients  ClientFetcher
	validate models.ClientValidator
	patients PatientReconciler
	notes    NoteReconciler
	stats    *Statistics
	logger   *zap.Logger
}

func NewSynchronizer(
	clients ClientFetcher,
	validate models.ClientValidator,
	patients PatientReconciler,
	notes NoteReconciler,
	stats *Statistics,
	logger *zap.Logger,
) *Synchronizer {
	if validate == nil {
		validate = models.ValidClient
	}
	return &Synchronizer{
		clients:  clients,
		validate: validate,
		patients: patients,
		notes:    notes,
		stats:    stats,
		logger:   logger,
	}
}

// Run executes one synchronization. It never returns an error and never
// panics past its own frame.
func (s *Synchronizer) Run(ctx context.Context) {
	s.stats.Reset()
	s.logger.Info("Starting synchronization")

	defer s.stats.Report(s.logger)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Info("Synchronization failed")
			s.logger.Error("panic during synchronization", zap.Any("panic", r))
		}
	}()

	if err := s.run(ctx); err != nil {
		s.logger.Info("Synchronization failed")
		s.logger.Error(err.Error(), zap.Error(err))
		return
	}
	s.logger.Info("Synchronization finished")
}

func (s *Synchronizer) run(ctx context.Context) error {
	clients, err := s.clients.FetchClients(ctx)
	if err != nil {
		return fmt.Errorf("client fetch: %w", err)
	}

	clients = s.filterInvalidClients(clients)

	if err := s.patients.SynchronizePatients(ctx, clients); err != nil {
		return fmt.Errorf("patient synchronization: %w", err)
	}
	if err := s.notes.SynchronizeNotesConcurrently(ctx, clients); err != nil {
		return fmt.Errorf("note synchronization: %w", err)
	}
	return nil
}

func (s *Synchronizer) filterInvalidClients(clients []models.ClientRecord) []models.ClientRecord {
	valid := clients[:0]
	invalid := 0
	for _, client := range clients {
		if s.validate(client) {
			valid = append(valid, client)
		} else {
			invalid++
		}
	}
	s.stats.AddInvalidClients(invalid)
	return valid
}
