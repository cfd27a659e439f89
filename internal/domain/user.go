package domain

// User note author (users table). Created on first sighting of a login,
// never updated or deleted by synchronization.
type User struct {
	ID    int64  `db:"id"`    // BIGSERIAL PRIMARY KEY
	Login string `db:"login"` // NOT NULL UNIQUE
}

// UserRef author reference carried on a note. Login is denormalized from the
// users table because the merge policy compares authors by login.
type UserRef struct {
	ID    int64
	Login string
}

// Ref returns an author reference for this user
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Login: u.Login}
}
