package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mhutton/relay-api/internal/config"
	"github.com/mhutton/relay-api/internal/domain"
	"github.com/mhutton/relay-api/internal/metrics"
	"github.com/mhutton/relay-api/internal/platform/memory"
	"github.com/mhutton/relay-api/internal/platform/postgres"
	"github.com/mhutton/relay-api/internal/ratelimit"
	"github.com/mhutton/relay-api/internal/service/auth"
	"github.com/mhutton/relay-api/internal/store"
)

// bootstrapAdminUsername is the account created on an empty store so the
// protected endpoints are reachable on a fresh deployment.
const bootstrapAdminUsername = "admin"

// application holds the shared dependencies of the server so that startup
// wiring and shutdown cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db and redisClient are nil when the corresponding backend is not
	// configured.
	db          *sql.DB
	redisClient *redis.Client

	users   store.UserStore
	tokens  auth.TokenService
	hasher  auth.PasswordHasher
	limits  ratelimit.Store
	metrics *metrics.Metrics

	// now overrides the pipeline clock in tests. Nil means time.Now.
	now func() time.Time

	stopJanitor context.CancelFunc
}

// newApplication wires every dependency from configuration. A database URL
// selects the PostgreSQL store; without one the server runs on in-memory
// storage intended for development. The rate limit counter backend is
// chosen independently ("memory" or "redis").
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  log,
		metrics: metrics.New("relay"),
	}

	var err error
	app.tokens, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Info("token service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	if cfg.Database.URL == "" {
		app.users = memory.NewUserStore()
		log.Warn("no database URL configured, using in-memory storage; data is lost on restart")
	} else {
		app.db, err = setupDatabase(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := runMigrations(app.db, log); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.users = postgres.NewUserStore(app.db, log)
	}

	if err := app.setupRateLimits(ctx); err != nil {
		return nil, err
	}

	if err := app.seedBootstrapAdmin(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed bootstrap admin: %w", err)
	}

	log.Info("application initialized")
	return app, nil
}

// setupRateLimits picks the counter store behind every RateLimit
// requirement. The memory backend also gets a janitor goroutine that sweeps
// counters from past windows.
func (app *application) setupRateLimits(ctx context.Context) error {
	switch app.config.RateLimit.Backend {
	case "redis":
		app.redisClient = redis.NewClient(&redis.Options{
			Addr: app.config.RateLimit.RedisAddr,
			DB:   app.config.RateLimit.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := app.redisClient.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("failed to ping redis at %s: %w", app.config.RateLimit.RedisAddr, err)
		}

		app.limits = ratelimit.NewRedisStore(app.redisClient,
			ratelimit.WithPrefix(app.config.RateLimit.KeyPrefix))
		app.logger.Info("rate limit counters backed by redis",
			"addr", app.config.RateLimit.RedisAddr)

	default: // "memory", enforced by config validation
		memStore := ratelimit.NewMemoryStore()
		janitorCtx, cancel := context.WithCancel(ctx)
		app.stopJanitor = cancel
		memStore.StartJanitor(janitorCtx)

		app.limits = memStore
		app.logger.Info("rate limit counters backed by process memory")
	}
	return nil
}

// seedBootstrapAdmin creates an admin account when the user store is
// completely empty, so a fresh deployment can log in without manual SQL.
// The generated password is printed to the log exactly once; it is not
// recoverable afterwards.
func (app *application) seedBootstrapAdmin(ctx context.Context) error {
	existing, err := app.users.List(ctx, store.UserFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("checking for existing users: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	password := uuid.NewString()
	user, err := domain.NewUser(bootstrapAdminUsername, password, domain.RoleAdmin)
	if err != nil {
		return err
	}

	user.HashedPassword, err = app.hasher.Hash(user.Password)
	if err != nil {
		return fmt.Errorf("hashing bootstrap password: %w", err)
	}
	user.Password = ""

	if app.db != nil {
		// Check-then-insert runs in one transaction so concurrent
		// replicas racing on first boot cannot both seed.
		err = store.RunInTransaction(ctx, app.db, func(txCtx context.Context, tx *sql.Tx) error {
			txUsers := app.users.WithTx(tx)
			if _, getErr := txUsers.GetByUsername(txCtx, user.Username); getErr == nil {
				return nil
			} else if !errors.Is(getErr, store.ErrUserNotFound) {
				return getErr
			}
			return txUsers.Create(txCtx, user)
		})
	} else {
		err = app.users.Create(ctx, user)
	}
	if err != nil && !errors.Is(err, store.ErrUsernameExists) {
		return err
	}

	app.logger.Warn("seeded bootstrap admin account; change its password immediately",
		"username", bootstrapAdminUsername,
		"password", password)
	return nil
}

// Run builds the router and serves HTTP until the process is signalled or
// the server fails.
func (app *application) Run(ctx context.Context) error {
	router, err := app.buildRouter()
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources acquired during initialization. Safe to call
// after a partial initialization failure.
func (app *application) cleanup() {
	if app.stopJanitor != nil {
		app.stopJanitor()
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("failed to close redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
