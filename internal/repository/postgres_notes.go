package repository

import (
	"context"
	"database/sql"
	"fmt"

	"carelink-sync/internal/domain"

	"github.com/google/uuid"
)

// PostgresNotesRepository note table access
type PostgresNotesRepository struct {
	db *sql.DB
}

func NewPostgresNotesRepository(db *sql.DB) *PostgresNotesRepository {
	return &PostgresNotesRepository{db: db}
}

var _ NotesRepository = (*PostgresNotesRepository)(nil)

func (r *PostgresNotesRepository) ExistsByCommentID(ctx context.Context, commentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM note WHERE comment_id = $1)`,
		commentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check note by comment id: %w", err)
	}
	return exists, nil
}

func (r *PostgresNotesRepository) FindByCommentID(ctx context.Context, commentID uuid.UUID) (*domain.Note, error) {
	var (
		note          domain.Note
		modifiedAt    sql.NullTime
		modifiedByID  sql.NullInt64
		modifiedLogin sql.NullString
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT n.id, n.comment_id, n.note, n.created_at, n.modified_at,
		        n.created_by, cu.login,
		        n.modified_by, mu.login,
		        n.patient_id
		 FROM note n
		 JOIN users cu ON cu.id = n.created_by
		 LEFT JOIN users mu ON mu.id = n.modified_by
		 WHERE n.comment_id = $1`,
		commentID,
	).Scan(
		&note.ID,
		&note.CommentID,
		&note.Text,
		&note.CreatedAt,
		&modifiedAt,
		&note.CreatedBy.ID,
		&note.CreatedBy.Login,
		&modifiedByID,
		&modifiedLogin,
		&note.PatientID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}

	if modifiedAt.Valid {
		t := modifiedAt.Time
		note.ModifiedAt = &t
	}
	if modifiedByID.Valid {
		note.ModifiedBy = &domain.UserRef{ID: modifiedByID.Int64, Login: modifiedLogin.String}
	}

	return &note, nil
}

// SaveAll upserts notes by comment_id in one transaction. Partition workers
// call this concurrently; the unique key keeps the writes safe.
func (r *PostgresNotesRepository) SaveAll(ctx context.Context, notes []*domain.Note) error {
	if len(notes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, note := range notes {
		var modifiedBy sql.NullInt64
		if note.ModifiedBy != nil {
			modifiedBy = sql.NullInt64{Int64: note.ModifiedBy.ID, Valid: true}
		}
		var modifiedAt sql.NullTime
		if note.ModifiedAt != nil {
			modifiedAt = sql.NullTime{Time: *note.ModifiedAt, Valid: true}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO note (comment_id, note, created_at, modified_at, created_by, modified_by, patient_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (comment_id)
			 DO UPDATE SET note = EXCLUDED.note,
			               created_at = EXCLUDED.created_at,
			               modified_at = EXCLUDED.modified_at,
			               created_by = EXCLUDED.created_by,
			               modified_by = EXCLUDED.modified_by,
			               patient_id = EXCLUDED.patient_id`,
			note.CommentID,
			note.Text,
			note.CreatedAt,
			modifiedAt,
			note.CreatedBy.ID,
			modifiedBy,
			note.PatientID,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert note %s: %w", note.CommentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notes: %w", err)
	}
	return nil
}
