package reconcile

import (
	"context"
	"fmt"

	"carelink-sync/internal/domain"
	"carelink-sync/internal/models"
	"carelink-sync/internal/repository"

	"go.uber.org/zap"
)

// PatientReconciler converges legacy client records into patient profiles
type PatientReconciler interface {
	SynchronizePatients(ctx context.Context, clients []models.ClientRecord) error
}

type patientReconciler struct {
	patients repository.PatientsRepository
	stats    *Statistics
	logger   *zap.Logger
}

func NewPatientReconciler(patients repository.PatientsRepository, stats *Statistics, logger *zap.Logger) PatientReconciler {
	return &patientReconciler{patients: patients, stats: stats, logger: logger}
}

type fullName struct {
	firstName string
	lastName  string
}

// SynchronizePatients partitions records by whether a patient with the exact
// (firstName, lastName) pair already exists. Matched records attach any
// client guids the patient does not yet own; the rest create new patients.
func (r *patientReconciler) SynchronizePatients(ctx context.Context, clients []models.ClientRecord) error {
	var existing, missing []models.ClientRecord
	for _, client := range clients {
		exists, err := r.patients.ExistsByName(ctx, client.FirstName, client.LastName)
		if err != nil {
			return fmt.Errorf("failed to partition clients: %w", err)
		}
		if exists {
			existing = append(existing, client)
		} else {
			missing = append(missing, client)
		}
	}

	attached, err := r.attachClientMappings(ctx, existing)
	if err != nil {
		return err
	}
	r.stats.AddNewClients(attached)

	created, err := r.createNewPatients(ctx, missing)
	if err != nil {
		return err
	}
	r.stats.AddNewPatients(created)

	return nil
}

// attachClientMappings binds each record's guid to its matching patient
// unless the patient already owns it; returns the number actually created.
// Reconciling the same (patient, guid) pair twice is a zero-write no-op.
func (r *patientReconciler) attachClientMappings(ctx context.Context, clients []models.ClientRecord) (int, error) {
	attached := 0
	for _, client := range clients {
		patient, err := r.patients.FindByName(ctx, client.FirstName, client.LastName)
		if err != nil {
			return attached, err
		}
		if patient == nil {
			return attached, fmt.Errorf("patient %s %s vanished during reconciliation",
				client.FirstName, client.LastName)
		}

		if patient.HasClientID(client.Guid) {
			continue
		}
		patient.AddClientID(client.Guid)
		if err := r.patients.Save(ctx, patient); err != nil {
			return attached, err
		}
		attached++
	}
	return attached, nil
}

// createNewPatients groups records by name and creates one patient per group,
// owning one mapping per record. One INACTIVE record taints the whole group:
// the merged patient starts INACTIVE even if its other records are ACTIVE.
func (r *patientReconciler) createNewPatients(ctx context.Context, clients []models.ClientRecord) (int, error) {
	groups := make(map[fullName][]models.ClientRecord)
	for _, client := range clients {
		key := fullName{firstName: client.FirstName, lastName: client.LastName}
		groups[key] = append(groups[key], client)
	}

	newPatients := make([]*domain.Patient, 0, len(groups))
	for name, group := range groups {
		status := domain.StatusActive
		for _, client := range group {
			if client.Status == string(domain.StatusInactive) {
				status = domain.StatusInactive
				break
			}
		}

		patient := &domain.Patient{
			FirstName: name.firstName,
			LastName:  name.lastName,
			Status:    status,
		}
		for _, client := range group {
			patient.AddClientID(client.Guid)
		}
		newPatients = append(newPatients, patient)
	}

	if err := r.patients.SaveAll(ctx, newPatients); err != nil {
		return 0, err
	}
	return len(newPatients), nil
}
