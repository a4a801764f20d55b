package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/s6816011857053-star/on-boarding/internal/domain/auth"
	"github.com/s6816011857053-star/on-boarding/internal/domain/onboarding"
	"github.com/s6816011857053-star/on-boarding/internal/platform/config"
	"github.com/s6816011857053-star/on-boarding/internal/platform/db"
	"github.com/s6816011857053-star/on-boarding/internal/platform/jobs"
	"github.com/s6816011857053-star/on-boarding/internal/platform/metrics"
	authhandler "github.com/s6816011857053-star/on-boarding/internal/transport/http/handlers/auth"
	onboardinghandler "github.com/s6816011857053-star/on-boarding/internal/transport/http/handlers/onboarding"
	reportshandler "github.com/s6816011857053-star/on-boarding/internal/transport/http/handlers/reports"
	"github.com/s6816011857053-star/on-boarding/internal/transport/http/middleware"
)

type App struct {
	Config     config.Config
	DB         *db.Pool
	Router     http.Handler
	Onboarding *onboarding.Service
	Auth       *auth.Service
	Metrics    *metrics.Collector
	Jobs       *jobs.Service
}

// New builds the application. Without a database URL every store lives in
// memory and is seeded with the demo data when seeding is enabled.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Metrics: metrics.New()}
	app.Jobs = jobs.New(16, app.Metrics)

	var (
		repo      onboarding.Repository
		userStore auth.UserStore
	)
	if cfg.UsePostgres() {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.DB = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		if cfg.RunSeed {
			if err := db.Seed(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("seed: %w", err)
			}
		}
		repo = onboarding.NewPostgresStore(pool)
		userStore = auth.NewStore(pool)
	} else {
		ds := onboarding.Dataset{Modules: onboarding.CatalogModules()}
		var users []auth.User
		if cfg.RunSeed {
			ds = onboarding.DemoDataset()
			seeded, err := auth.SeedUsers()
			if err != nil {
				return nil, err
			}
			users = seeded
		}
		repo = onboarding.NewMemoryStore(ds)
		userStore = auth.NewMemoryStore(users)
	}

	rules := onboarding.Rules{
		ProbationDays:         cfg.ProbationDays,
		BehindDaysThreshold:   cfg.BehindDaysThreshold,
		BehindCompletionRatio: cfg.BehindCompletionRatio,
	}
	app.Auth = auth.NewService(userStore)
	app.Onboarding = onboarding.NewService(repo, rules, onboarding.WithProgressObserver(app.Metrics))
	app.Router = app.routes()
	return app, nil
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(a.Metrics))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := a.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
		r.Use(middleware.Viewer(a.Auth))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(a.Auth).RegisterRoutes(r)
		onboardinghandler.NewHandler(a.Onboarding).RegisterRoutes(r)
		reportshandler.NewHandler(a.Onboarding).RegisterRoutes(r)
	})

	return router
}

// StartJobs runs the job worker and schedules the periodic progress sweep.
func (a *App) StartJobs(ctx context.Context) {
	a.Jobs.Start(ctx)
	a.Jobs.Schedule(ctx, a.Config.ProgressSweepInterval, a.progressSweepJob())
}

func (a *App) progressSweepJob() jobs.Job {
	return jobs.Job{
		Type: jobs.JobProgressSweep,
		Run: func(ctx context.Context) (any, error) {
			counts, err := a.Onboarding.ProgressBreakdown(ctx)
			if err != nil {
				return nil, err
			}
			byStatus := make(map[string]int, len(counts))
			for status, n := range counts {
				byStatus[string(status)] = n
			}
			a.Metrics.SetProgressBreakdown(byStatus)
			return byStatus, nil
		},
	}
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func installLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

// Run loads configuration, serves HTTP until SIGINT or SIGTERM, then drains
// in-flight requests.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	installLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	app.StartJobs(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("onboarding server listening", "addr", cfg.Addr, "postgres", cfg.UsePostgres(), "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
