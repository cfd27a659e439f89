package domain

import (
	"time"

	"github.com/google/uuid"
)

// Note locally persisted annotation (note table), reconciled from a legacy
// comment. CommentID is the legacy comment guid and the sole merge key.
type Note struct {
	ID         int64      `db:"id"`         // BIGSERIAL PRIMARY KEY
	CommentID  uuid.UUID  `db:"comment_id"` // NOT NULL UNIQUE
	Text       string     `db:"note"`
	CreatedAt  time.Time  `db:"created_at"`
	ModifiedAt *time.Time `db:"modified_at"` // nullable
	CreatedBy  UserRef
	ModifiedBy *UserRef
	PatientID  int64 `db:"patient_id"`
}
