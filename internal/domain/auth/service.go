package auth

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{Store: store}
}

// Authenticate resolves a user by username and verifies the password hash.
// Unknown usernames and wrong passwords report the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.Store.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) UserByID(ctx context.Context, userID string) (User, error) {
	return s.Store.UserByID(ctx, userID)
}
