package reconcile

import (
	"context"
	"fmt"

	"carelink-sync/internal/domain"
	"carelink-sync/internal/repository"
)

// UserReconciler idempotent get-or-create of note authors by login
type UserReconciler interface {
	GetOrCreate(ctx context.Context, login string) (*domain.User, error)
}

type userReconciler struct {
	users repository.UsersRepository
	stats *Statistics
}

func NewUserReconciler(users repository.UsersRepository, stats *Statistics) UserReconciler {
	return &userReconciler{users: users, stats: stats}
}

// GetOrCreate is race-safe without an application-level lock: the idempotent
// insert rides the login unique constraint, then the row is read back. Only
// the caller whose insert landed counts a new user.
func (r *userReconciler) GetOrCreate(ctx context.Context, login string) (*domain.User, error) {
	inserted, err := r.users.InsertIfAbsent(ctx, login)
	if err != nil {
		return nil, err
	}
	if inserted {
		r.stats.AddNewUsers(1)
	}

	user, err := r.users.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %q missing after insert-if-absent", login)
	}
	return user, nil
}
