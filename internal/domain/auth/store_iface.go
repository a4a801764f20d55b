package auth

import "context"

type UserStore interface {
	UserByUsername(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, userID string) (User, error)
}
