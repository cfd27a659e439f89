package repository

import (
	"context"
	"sync"

	"carelink-sync/internal/domain"

	"github.com/google/uuid"
)

// MemoryPatientsRepo in-memory patients store. Backs local dev when the DB is
// disabled and serves as the test fake.
type MemoryPatientsRepo struct {
	mu       sync.RWMutex
	nextID   int64
	patients map[int64]*domain.Patient
}

func NewMemoryPatientsRepo() *MemoryPatientsRepo {
	return &MemoryPatientsRepo{patients: map[int64]*domain.Patient{}}
}

var _ PatientsRepository = (*MemoryPatientsRepo)(nil)

func (r *MemoryPatientsRepo) ExistsByName(_ context.Context, firstName, lastName string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByNameLocked(firstName, lastName) != nil, nil
}

func (r *MemoryPatientsRepo) FindByName(_ context.Context, firstName, lastName string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clonePatient(r.findByNameLocked(firstName, lastName)), nil
}

func (r *MemoryPatientsRepo) FindByClientID(_ context.Context, clientID uuid.UUID) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.HasClientID(clientID) {
			return clonePatient(p), nil
		}
	}
	return nil, nil
}

func (r *MemoryPatientsRepo) Save(ctx context.Context, patient *domain.Patient) error {
	return r.SaveAll(ctx, []*domain.Patient{patient})
}

func (r *MemoryPatientsRepo) SaveAll(_ context.Context, patients []*domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, patient := range patients {
		if patient.ID == 0 {
			r.nextID++
			patient.ID = r.nextID
		}
		stored := r.patients[patient.ID]
		if stored == nil {
			r.patients[patient.ID] = clonePatient(patient)
			continue
		}
		// merge mappings only; profile fields never change after creation
		for _, id := range patient.ClientIDs {
			if !stored.HasClientID(id) {
				stored.AddClientID(id)
			}
		}
	}
	return nil
}

// Count returns the number of stored patients (test helper)
func (r *MemoryPatientsRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patients)
}

func (r *MemoryPatientsRepo) findByNameLocked(firstName, lastName string) *domain.Patient {
	for _, p := range r.patients {
		if p.FirstName == firstName && p.LastName == lastName {
			return p
		}
	}
	return nil
}

func clonePatient(p *domain.Patient) *domain.Patient {
	if p == nil {
		return nil
	}
	out := *p
	out.ClientIDs = append([]uuid.UUID(nil), p.ClientIDs...)
	return &out
}
