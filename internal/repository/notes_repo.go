package repository

import (
	"context"

	"carelink-sync/internal/domain"

	"github.com/google/uuid"
)

// NotesRepository note data access. comment_id is the sole merge key.
type NotesRepository interface {
	// ExistsByCommentID reports whether a note for the legacy comment guid exists
	ExistsByCommentID(ctx context.Context, commentID uuid.UUID) (bool, error)

	// FindByCommentID loads a note with its author logins; (nil, nil) when absent
	FindByCommentID(ctx context.Context, commentID uuid.UUID) (*domain.Note, error)

	// SaveAll upserts a batch of new and updated notes keyed by comment_id.
	// Safe under concurrent callers from partition workers.
	SaveAll(ctx context.Context, notes []*domain.Note) error
}
