package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"go-crud-api/internal/config"
	"go-crud-api/internal/database"
	"go-crud-api/internal/handler"
	"go-crud-api/internal/logger"
	"go-crud-api/internal/metrics"
	"go-crud-api/internal/middleware"
	"go-crud-api/internal/model"
	"go-crud-api/internal/repository"
	"go-crud-api/internal/router"
	"go-crud-api/internal/security"
	"go-crud-api/internal/service"
	"go-crud-api/internal/token"
)

type userStore interface {
	FindByUsername(ctx context.Context, username string) (model.Identity, error)
}

type bookStore interface {
	FindAll(ctx context.Context) ([]model.Book, error)
	FindByID(ctx context.Context, id string) (model.Book, error)
	Save(ctx context.Context, book model.Book) (bool, error)
	Delete(ctx context.Context, id string) error
}

type carStore interface {
	FindAll(ctx context.Context) ([]model.Car, error)
	FindByID(ctx context.Context, id string) (model.Car, error)
	Save(ctx context.Context, car model.Car) (bool, error)
	Delete(ctx context.Context, id string) error
}

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	return NewWithConfig(context.Background(), cfg, bcrypt.DefaultCost)
}

// NewWithConfig wires every component from cfg. hashCost is the bcrypt cost
// used for seeded passwords.
func NewWithConfig(ctx context.Context, cfg *config.Config, hashCost int) (*App, error) {
	a := &App{}

	policy, err := security.NewPolicy(cfg.UserSource, cfg.FormLoginEnabled, cfg.StatelessSessions)
	if err != nil {
		return nil, fmt.Errorf("invalid authentication policy: %w", err)
	}

	appMetrics := metrics.New()

	var db *database.DB
	if cfg.DatabaseURL != "" {
		slog.Info("connecting to PostgreSQL")
		db, err = database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

		if err := db.EnsureSchema(ctx); err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		slog.Info("database ready")
	}

	users, err := newUserStore(ctx, cfg, policy.UserSource, db, hashCost)
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize user source: %w", err)
	}
	slog.Info("user source ready", "source", policy.UserSource)

	var books bookStore = repository.NewMemoryBookRepository()
	var cars carStore = repository.NewMemoryCarRepository()
	if db != nil {
		books = repository.NewBookRepository(db.Pool)
		cars = repository.NewCarRepository(db.Pool)
	}
	if cfg.SeedSampleData {
		if err := service.SeedSampleData(ctx, books, cars); err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to seed sample data: %w", err)
		}
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = token.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("verification cache disabled: redis unreachable", "error", err)
		} else {
			a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = cache.Close() })
			slog.Info("verification cache enabled", "ttl", cfg.VerifyCacheTTL)
		}
	}
	verifier := token.NewVerifier(codec, cache, cfg.VerifyCacheTTL)

	authService := service.NewAuthService(users, codec, appMetrics)
	authMiddleware := middleware.NewAuthMiddleware(verifier, users, policy).WithRecorder(appMetrics)

	docsHandler, err := handler.NewDocsHandler()
	if err != nil {
		a.cleanup()
		return nil, err
	}

	checks := map[string]handler.HealthChecker{}
	if db != nil {
		checks["database"] = db
	}
	if cache != nil {
		checks["cache"] = verifier
	}

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Books:    handler.NewBookHandler(service.NewBookService(books)),
		Cars:     handler.NewCarHandler(service.NewCarService(cars)),
		Demo:     handler.NewDemoHandler(),
		External: handler.NewExternalHandler(service.NewExternalAPIService(cfg.ExternalAPIURL, cfg.ExternalAPITimeout)),
		Health:   handler.NewHealthHandler(checks),
		Docs:     docsHandler,
	}

	if policy.SessionsEnabled() {
		sessions := middleware.NewSessionManager(cfg.SessionKey, cfg.CookieSecure)
		authMiddleware.WithSessions(sessions)
		if policy.FormLoginEnabled {
			handlers.FormLogin = handler.NewFormLoginHandler(authService, sessions)
		}
	}

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(cfg, authMiddleware, appMetrics, handlers),
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

func newUserStore(ctx context.Context, cfg *config.Config, source security.UserSource, db *database.DB, hashCost int) (userStore, error) {
	admin := repository.SeedUser{Username: "admin", Password: cfg.AdminPassword, Role: "ADMIN"}
	user := repository.SeedUser{Username: "user", Password: cfg.UserPassword, Role: "USER"}

	switch source {
	case security.UserSourceFile:
		return repository.NewFileUserRepository(cfg.UsersFile, admin, hashCost)
	case security.UserSourceDatabase:
		if db == nil {
			return nil, errors.New("database user source requires DATABASE_URL")
		}
		repo := repository.NewUserRepository(db.Pool)
		for _, seed := range []repository.SeedUser{admin, user} {
			identity, err := repository.HashSeed(seed, hashCost)
			if err != nil {
				return nil, err
			}
			created, err := repo.EnsureUser(ctx, identity)
			if err != nil {
				return nil, err
			}
			if created {
				slog.Info("seeded user", "username", identity.Username, "role", identity.Role)
			}
		}
		return repo, nil
	default:
		return repository.NewSeededMemoryUserRepository(hashCost, user, admin)
	}
}

// Handler exposes the assembled router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
