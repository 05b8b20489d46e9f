package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/underbudget/backend/docs"
	"github.com/underbudget/backend/internal/audit"
	"github.com/underbudget/backend/internal/config"
	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/handlers"
	"github.com/underbudget/backend/internal/logger"
	"github.com/underbudget/backend/internal/metrics"
	mW "github.com/underbudget/backend/internal/middleware"
	"github.com/underbudget/backend/internal/repository"
	"github.com/underbudget/backend/internal/repository/memory"
	"github.com/underbudget/backend/internal/security"
	"github.com/underbudget/backend/internal/services"
	"go.uber.org/zap"
)

// @title UnderBudget Backend API
// @version 1.0
// @description User accounts, session tokens and shared ledgers
// @host localhost:8080
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	l, err := logger.New(cfg.Log.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer l.Sync()

	if err := run(cfg, l); err != nil {
		l.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, l *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	store, checks, cleanup, err := openStorage(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)
	auditLog := audit.NewLogger(l)

	hasher := security.NewPasswordHasher(cfg.Auth)
	issuer := security.NewTokenIssuer(cfg.Auth)
	credentials := services.NewCredentialStore(store, hasher, l)
	authService := services.NewAuthService(store, credentials, hasher, issuer, l, auditLog, m)
	ledgerService := services.NewLedgerService(store, l, auditLog, m)

	router := handlers.NewRouter(cfg.Server, handlers.RouterDeps{
		Auth:     handlers.NewAuthHandler(authService, l),
		Ledgers:  handlers.NewLedgerHandler(ledgerService),
		AuthMW:   mW.NewAuthMiddleware(authService, l),
		Metrics:  m,
		Gatherer: registry,
		Checks:   checks,
		Logger:   l,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("storage", cfg.Storage.Backend),
			zap.String("tokens", cfg.Storage.TokenBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	l.Info("server stopped")
	return nil
}

// openStorage connects the configured backends and returns the storage
// bundle, the health checks for /health and a cleanup func.
func openStorage(ctx context.Context, cfg *config.Config, l *zap.Logger) (services.Storage, map[string]handlers.HealthCheck, func(), error) {
	if cfg.Storage.Backend == config.BackendMemory {
		l.Warn("using in-memory storage, data is lost on restart")
		return services.Storage{Tx: memory.Transactor{}, Repos: memory.NewManager()}, nil, func() {}, nil
	}

	db, err := database.InitDB(ctx, cfg.Database, l)
	if err != nil {
		return services.Storage{}, nil, nil, err
	}
	closers := []func(){func() { db.Close() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			cleanup()
			return services.Storage{}, nil, nil, err
		}
		l.Info("database migrations applied")
	}

	checks := map[string]handlers.HealthCheck{"database": pingDB(db)}

	var opts []repository.ManagerOption
	if cfg.Storage.TokenBackend == config.BackendRedis {
		rdb, err := database.InitRedis(ctx, cfg.Redis, l)
		if err != nil {
			cleanup()
			return services.Storage{}, nil, nil, err
		}
		closers = append(closers, func() { rdb.Close() })
		checks["redis"] = pingRedis(rdb)
		opts = append(opts, repository.WithTokenRepository(repository.NewRedisTokenRepository(rdb)))
	}

	store := services.Storage{
		DB:    db,
		Tx:    database.NewSQLTransactor(db),
		Repos: repository.NewPostgresManager(opts...),
	}
	return store, checks, cleanup, nil
}

func pingDB(db *sql.DB) handlers.HealthCheck {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}

func pingRedis(rdb *redis.Client) handlers.HealthCheck {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}
