package repository

import (
	"context"

	"carelink-sync/internal/domain"
)

// UsersRepository note author data access.
// InsertIfAbsent + FindByLogin is the race-safe get-or-create pair: the insert
// is atomic against the login unique constraint, so N concurrent callers with
// the same login produce exactly one row and exactly one reports inserted=true.
type UsersRepository interface {
	// InsertIfAbsent inserts a user for the login unless one exists;
	// returns whether this call created the row
	InsertIfAbsent(ctx context.Context, login string) (bool, error)

	// FindByLogin loads the user for a login; (nil, nil) when absent
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
}
