package repository

import (
	"context"
	"database/sql"
	"fmt"

	"carelink-sync/internal/domain"
)

// PostgresUsersRepository users table access
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

// InsertIfAbsent races on the login unique constraint: ON CONFLICT DO NOTHING
// means exactly one of N concurrent callers observes RowsAffected == 1.
func (r *PostgresUsersRepository) InsertIfAbsent(ctx context.Context, login string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (login) VALUES ($1) ON CONFLICT (login) DO NOTHING`,
		login,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert user %q: %w", login, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresUsersRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, login FROM users WHERE login = $1`,
		login,
	).Scan(&user.ID, &user.Login)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user %q: %w", login, err)
	}
	return &user, nil
}
