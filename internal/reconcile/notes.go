package reconcile

import (
	"context"
	"fmt"
	"time"

	"carelink-sync/internal/domain"
	"carelink-sync/internal/models"
	"carelink-sync/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommentFetcher pulls legacy comments for one client guid
type CommentFetcher interface {
	FetchComments(ctx context.Context, query models.CommentQuery) ([]models.CommentRecord, error)
}

// NoteReconciler converges legacy comments into notes
type NoteReconciler interface {
	SynchronizeNotes(ctx context.Context, clients []models.ClientRecord) error
	SynchronizeNotesConcurrently(ctx context.Context, clients []models.ClientRecord) error
}

type noteReconciler struct {
	fetcher  CommentFetcher
	users    UserReconciler
	patients repository.PatientsRepository
	notes    repository.NotesRepository
	validate models.CommentValidator
	stats    *Statistics
	logger   *zap.Logger
	workers  int
	now      func() time.Time
}

func NewNoteReconciler(
	fetcher CommentFetcher,
	users UserReconciler,
	patients repository.PatientsRepository,
	notes repository.NotesRepository,
	validate models.CommentValidator,
	stats *Statistics,
	logger *zap.Logger,
	workers int,
) NoteReconciler {
	if workers <= 0 {
		workers = 1
	}
	if validate == nil {
		validate = models.ValidComment
	}
	return &noteReconciler{
		fetcher:  fetcher,
		users:    users,
		patients: patients,
		notes:    notes,
		validate: validate,
		stats:    stats,
		logger:   logger,
		workers:  workers,
		now:      time.Now,
	}
}

// SynchronizeNotesConcurrently splits the client records into contiguous
// blocks and reconciles each block on its own worker. Blocks run to
// completion regardless of sibling failures; the first block error surfaces
// after the join.
func (r *noteReconciler) SynchronizeNotesConcurrently(ctx context.Context, clients []models.ClientRecord) error {
	return RunPartitioned(ctx, clients, r.workers, r.SynchronizeNotes)
}

// SynchronizeNotes reconciles notes for every distinct client guid in the
// block, in input order, then persists the block's new and updated notes in
// one batch.
func (r *noteReconciler) SynchronizeNotes(ctx context.Context, clients []models.ClientRecord) error {
	seen := make(map[uuid.UUID]bool, len(clients))
	var batch []*domain.Note

	for _, client := range clients {
		if seen[client.Guid] {
			continue
		}
		seen[client.Guid] = true

		comments := r.fetchComments(ctx, client.Guid, client.Agency)
		comments = r.filterInvalidComments(comments)

		for _, comment := range comments {
			note, err := r.reconcileComment(ctx, comment)
			if err != nil {
				return err
			}
			if note != nil {
				batch = append(batch, note)
			}
		}
	}

	return r.notes.SaveAll(ctx, batch)
}

// fetchComments pulls one client's comments for the trailing one-year window.
// A fetch failure degrades to an empty result so the remaining clients still
// reconcile; the failure is logged, not propagated.
func (r *noteReconciler) fetchComments(ctx context.Context, clientGuid uuid.UUID, agency string) []models.CommentRecord {
	now := r.now()
	query := models.CommentQuery{
		Agency:     agency,
		ClientGuid: clientGuid,
		DateFrom:   models.Date{Time: now.AddDate(-1, 0, 0)},
		DateTo:     models.Date{Time: now},
	}

	comments, err := r.fetcher.FetchComments(ctx, query)
	if err != nil {
		r.logger.Error("Legacy system connection error on comment fetch",
			zap.String("client_guid", clientGuid.String()),
			zap.String("agency", agency),
			zap.Error(err),
		)
		return nil
	}
	return comments
}

func (r *noteReconciler) filterInvalidComments(comments []models.CommentRecord) []models.CommentRecord {
	valid := comments[:0]
	invalid := 0
	for _, comment := range comments {
		if r.validate(comment) {
			valid = append(valid, comment)
		} else {
			invalid++
		}
	}
	r.stats.AddInvalidComments(invalid)
	return valid
}

// reconcileComment resolves the owning patient and creates or merges the
// note. Comments of a non-ACTIVE patient are skipped entirely: no user
// lookup, no note write, no counters.
func (r *noteReconciler) reconcileComment(ctx context.Context, comment models.CommentRecord) (*domain.Note, error) {
	patient, err := r.patients.FindByClientID(ctx, comment.ClientGuid)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("no patient owns client %s referenced by comment %s",
			comment.ClientGuid, comment.Guid)
	}
	if patient.Status != domain.StatusActive {
		return nil, nil
	}

	user, err := r.users.GetOrCreate(ctx, comment.LoggedUser)
	if err != nil {
		return nil, err
	}

	exists, err := r.notes.ExistsByCommentID(ctx, comment.Guid)
	if err != nil {
		return nil, err
	}
	if !exists {
		r.stats.AddNewNotes(1)
		return buildNewNote(comment, user, patient), nil
	}
	return r.updateNoteIfNeeded(ctx, comment, user, patient)
}

func buildNewNote(comment models.CommentRecord, user *domain.User, patient *domain.Patient) *domain.Note {
	note := &domain.Note{
		CommentID: comment.Guid,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt.Time,
		CreatedBy: user.Ref(),
		PatientID: patient.ID,
	}
	if comment.ModifiedAt != nil {
		t := comment.ModifiedAt.Time
		note.ModifiedAt = &t
	}
	return note
}

// updateNoteIfNeeded applies the merge policy to an existing note. Text and
// author edits are trusted only from a comment demonstrably newer than the
// stored note; patient reassignment and createdAt correction apply
// unconditionally as structural corrections.
func (r *noteReconciler) updateNoteIfNeeded(ctx context.Context, comment models.CommentRecord, user *domain.User, patient *domain.Patient) (*domain.Note, error) {
	existing, err := r.notes.FindByCommentID(ctx, comment.Guid)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("note for comment %s vanished during reconciliation", comment.Guid)
	}

	isUpdated := false
	isCommentNewer := (existing.ModifiedAt == nil && comment.ModifiedAt != nil) ||
		(existing.ModifiedAt != nil && comment.ModifiedAt != nil &&
			comment.ModifiedAt.After(*existing.ModifiedAt))

	// modified time was changed and now the comment is newer
	if isCommentNewer {
		t := comment.ModifiedAt.Time
		existing.ModifiedAt = &t
		isUpdated = true
	}

	// note was reassigned to a different client representing a different patient
	if existing.PatientID != patient.ID {
		existing.PatientID = patient.ID
		isUpdated = true
	}

	// note text was changed
	if isCommentNewer && existing.Text != comment.Text {
		existing.Text = comment.Text
	}

	// modifying user may be changed
	if isCommentNewer {
		if existing.ModifiedBy == nil || existing.ModifiedBy.Login != user.Login {
			ref := user.Ref()
			existing.ModifiedBy = &ref
		}
	}

	// creating user was changed
	if isCommentNewer && existing.CreatedBy.Login != user.Login {
		existing.CreatedBy = user.Ref()
	}

	// created time was changed
	if !existing.CreatedAt.Equal(comment.CreatedAt.Time) {
		existing.CreatedAt = comment.CreatedAt.Time
		isUpdated = true
	}

	// data modified without a modified-time change still counts
	if isUpdated {
		r.stats.AddUpdatedNotes(1)
	}

	return existing, nil
}
