package repository

import (
	"context"
	"sync"

	"carelink-sync/internal/domain"
)

// MemoryUsersRepo in-memory users store. The mutex gives InsertIfAbsent the
// same exactly-once guarantee the unique constraint gives in Postgres.
type MemoryUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func NewMemoryUsersRepo() *MemoryUsersRepo {
	return &MemoryUsersRepo{users: map[string]*domain.User{}}
}

var _ UsersRepository = (*MemoryUsersRepo)(nil)

func (r *MemoryUsersRepo) InsertIfAbsent(_ context.Context, login string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[login]; ok {
		return false, nil
	}
	r.nextID++
	r.users[login] = &domain.User{ID: r.nextID, Login: login}
	return true, nil
}

func (r *MemoryUsersRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[login]
	if !ok {
		return nil, nil
	}
	out := *user
	return &out, nil
}

// Count returns the number of stored users (test helper)
func (r *MemoryUsersRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
