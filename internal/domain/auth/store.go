package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/s6816011857053-star/on-boarding/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(q querier.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	return s.scanUser(s.DB.QueryRow(ctx, `
    SELECT id, username, password_hash, role, COALESCE(employee_id, ''), name, COALESCE(email, ''), created_at
    FROM users
    WHERE username = $1
  `, username))
}

func (s *Store) UserByID(ctx context.Context, userID string) (User, error) {
	return s.scanUser(s.DB.QueryRow(ctx, `
    SELECT id, username, password_hash, role, COALESCE(employee_id, ''), name, COALESCE(email, ''), created_at
    FROM users
    WHERE id = $1
  `, userID))
}

func (s *Store) CreateUser(ctx context.Context, user User) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO users (id, username, password_hash, role, employee_id, name, email, created_at)
    VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,NULLIF($7,''),$8)
    ON CONFLICT (username) DO NOTHING
  `, user.ID, user.Username, user.PasswordHash, string(user.Role), user.EmployeeID, user.Name, user.Email, user.CreatedAt)
	return err
}

func (s *Store) scanUser(row pgx.Row) (User, error) {
	var user User
	var role string
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &user.EmployeeID, &user.Name, &user.Email, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	user.Role = Role(role)
	return user, nil
}
