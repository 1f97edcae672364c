package sqlite

import (
	"context"
	"database/sql"

	"github.com/dkeye/Stage/internal/domain"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) ByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, role FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Role)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
