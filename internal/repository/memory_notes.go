package repository

import (
	"context"
	"sync"

	"carelink-sync/internal/domain"

	"github.com/google/uuid"
)

// MemoryNotesRepo in-memory notes store keyed by legacy comment guid
type MemoryNotesRepo struct {
	mu     sync.RWMutex
	nextID int64
	notes  map[uuid.UUID]*domain.Note
}

func NewMemoryNotesRepo() *MemoryNotesRepo {
	return &MemoryNotesRepo{notes: map[uuid.UUID]*domain.Note{}}
}

var _ NotesRepository = (*MemoryNotesRepo)(nil)

func (r *MemoryNotesRepo) ExistsByCommentID(_ context.Context, commentID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.notes[commentID]
	return ok, nil
}

func (r *MemoryNotesRepo) FindByCommentID(_ context.Context, commentID uuid.UUID) (*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneNote(r.notes[commentID]), nil
}

func (r *MemoryNotesRepo) SaveAll(_ context.Context, notes []*domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, note := range notes {
		if existing, ok := r.notes[note.CommentID]; ok && note.ID == 0 {
			note.ID = existing.ID
		}
		if note.ID == 0 {
			r.nextID++
			note.ID = r.nextID
		}
		r.notes[note.CommentID] = cloneNote(note)
	}
	return nil
}

// Count returns the number of stored notes (test helper)
func (r *MemoryNotesRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notes)
}

func cloneNote(n *domain.Note) *domain.Note {
	if n == nil {
		return nil
	}
	out := *n
	if n.ModifiedAt != nil {
		t := *n.ModifiedAt
		out.ModifiedAt = &t
	}
	if n.ModifiedBy != nil {
		ref := *n.ModifiedBy
		out.ModifiedBy = &ref
	}
	return &out
}
