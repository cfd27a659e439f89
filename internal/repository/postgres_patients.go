package repository

import (
	"context"
	"database/sql"
	"fmt"

	"carelink-sync/internal/domain"

	"github.com/google/uuid"
)

// PostgresPatientsRepository patient_profile + old_client_mapping access
type PostgresPatientsRepository struct {
	db *sql.DB
}

func NewPostgresPatientsRepository(db *sql.DB) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db}
}

var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

func (r *PostgresPatientsRepository) ExistsByName(ctx context.Context, firstName, lastName string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM patient_profile WHERE first_name = $1 AND last_name = $2)`,
		firstName, lastName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check patient by name: %w", err)
	}
	return exists, nil
}

func (r *PostgresPatientsRepository) FindByName(ctx context.Context, firstName, lastName string) (*domain.Patient, error) {
	return r.findOne(ctx,
		`SELECT id, first_name, last_name, status
		 FROM patient_profile
		 WHERE first_name = $1 AND last_name = $2`,
		firstName, lastName,
	)
}

func (r *PostgresPatientsRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) (*domain.Patient, error) {
	return r.findOne(ctx,
		`SELECT p.id, p.first_name, p.last_name, p.status
		 FROM patient_profile p
		 JOIN old_client_mapping m ON m.patient_id = p.id
		 WHERE m.id = $1`,
		clientID,
	)
}

func (r *PostgresPatientsRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Patient, error) {
	var patient domain.Patient
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&patient.ID,
		&patient.FirstName,
		&patient.LastName,
		&patient.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}

	if patient.ClientIDs, err = r.loadMappings(ctx, patient.ID); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *PostgresPatientsRepository) loadMappings(ctx context.Context, patientID int64) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM old_client_mapping WHERE patient_id = $1 ORDER BY id`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query client mappings: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan client mapping: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresPatientsRepository) Save(ctx context.Context, patient *domain.Patient) error {
	return r.SaveAll(ctx, []*domain.Patient{patient})
}

// SaveAll persists patients and their mappings in one transaction. Mapping
// inserts are ON CONFLICT DO NOTHING so re-attaching an already stored guid
// is a no-op; attachment counting happens in the reconciler, before Save.
func (r *PostgresPatientsRepository) SaveAll(ctx context.Context, patients []*domain.Patient) error {
	if len(patients) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, patient := range patients {
		if patient.ID == 0 {
			err = tx.QueryRowContext(ctx,
				`INSERT INTO patient_profile (first_name, last_name, status)
				 VALUES ($1, $2, $3)
				 RETURNING id`,
				patient.FirstName, patient.LastName, patient.Status,
			).Scan(&patient.ID)
			if err != nil {
				return fmt.Errorf("failed to insert patient: %w", err)
			}
		}

		for _, clientID := range patient.ClientIDs {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO old_client_mapping (id, patient_id)
				 VALUES ($1, $2)
				 ON CONFLICT (id) DO NOTHING`,
				clientID, patient.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert client mapping: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patients: %w", err)
	}
	return nil
}
