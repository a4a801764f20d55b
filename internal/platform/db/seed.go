package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s6816011857053-star/on-boarding/internal/domain/auth"
	"github.com/s6816011857053-star/on-boarding/internal/domain/onboarding"
)

// Seed loads the demo users, module catalog and sample employees. Rows that
// already exist are left as they are.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	users, err := auth.SeedUsers()
	if err != nil {
		return err
	}
	userStore := auth.NewStore(pool)
	for _, user := range users {
		if err := userStore.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.Username, err)
		}
	}

	ds := onboarding.DemoDataset()
	if err := onboarding.NewPostgresStore(pool).SeedDataset(ctx, ds); err != nil {
		return err
	}
	slog.Info("seed complete", "users", len(users), "modules", len(ds.Modules), "employees", len(ds.Employees))
	return nil
}
