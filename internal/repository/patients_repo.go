package repository

import (
	"context"

	"carelink-sync/internal/domain"

	"github.com/google/uuid"
)

// PatientsRepository patient profile data access.
// Lookups return (nil, nil) when no row matches; synchronization treats an
// absent patient as "no match", not an error.
type PatientsRepository interface {
	// ExistsByName reports whether a patient with the exact
	// (firstName, lastName) pair exists (case-sensitive)
	ExistsByName(ctx context.Context, firstName, lastName string) (bool, error)

	// FindByName loads a patient with its client mappings
	FindByName(ctx context.Context, firstName, lastName string) (*domain.Patient, error)

	// FindByClientID resolves the patient owning a legacy client guid
	FindByClientID(ctx context.Context, clientID uuid.UUID) (*domain.Patient, error)

	// Save persists one patient and any client mappings not yet stored
	Save(ctx context.Context, patient *domain.Patient) error

	// SaveAll persists a batch of new patients with their mappings
	SaveAll(ctx context.Context, patients []*domain.Patient) error
}
