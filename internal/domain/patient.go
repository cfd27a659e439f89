package domain

import (
	"github.com/google/uuid"
)

// Status patient lifecycle state
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Patient converged local profile (patient_profile table).
// One patient per distinct (first_name, last_name) pair; owns all legacy
// client mappings that resolved to that name.
type Patient struct {
	ID        int64  `db:"id"` // BIGSERIAL PRIMARY KEY
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Status    Status `db:"status"` // derived once at creation, never recomputed

	// ClientIDs legacy client guids mapped to this patient
	// (old_client_mapping rows). A guid belongs to exactly one patient.
	ClientIDs []uuid.UUID
}

// HasClientID reports whether the legacy guid is already mapped to this patient
func (p *Patient) HasClientID(id uuid.UUID) bool {
	for _, existing := range p.ClientIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// AddClientID attaches a legacy guid to this patient (no dedup check;
// callers test HasClientID first when attachment must be counted)
func (p *Patient) AddClientID(id uuid.UUID) {
	p.ClientIDs = append(p.ClientIDs, id)
}
