package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"catalogadmin/catalog-panel/internal/audit"
	"catalogadmin/catalog-panel/internal/auth"
	"catalogadmin/catalog-panel/internal/catalog"
	"catalogadmin/catalog-panel/internal/config"
	"catalogadmin/catalog-panel/internal/httpserver"
	"catalogadmin/catalog-panel/internal/observability"
)

const dbPingInterval = 2 * time.Second

type App struct {
	cfg    config.Config
	log    *slog.Logger
	db     *sql.DB
	server *httpserver.Server
	audit  *audit.Logger
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := observability.NewLoggerTo(os.Stderr, cfg.LogLevel)

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := waitForDB(ctx, db, cfg.DBWaitTimeout, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	a, err := build(cfg, db, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	return a, nil
}

func build(cfg config.Config, db *sql.DB, logger *slog.Logger) (*App, error) {
	var (
		userStore    auth.UserStore
		sessionStore auth.SessionStore
		catalogSvc   httpserver.CatalogService
		err          error
	)
	if db != nil {
		if userStore, err = auth.NewPostgresUserStore(db); err != nil {
			return nil, fmt.Errorf("create postgres user store: %w", err)
		}
		pgSessions, err := auth.NewPostgresSessionStore(db)
		if err != nil {
			return nil, fmt.Errorf("create postgres session store: %w", err)
		}
		sessionStore = pgSessions
		if catalogSvc, err = catalog.NewPGService(db); err != nil {
			return nil, fmt.Errorf("create postgres catalog service: %w", err)
		}
	} else {
		if userStore, err = auth.NewFileUserStore(cfg.Auth.UserStateFile); err != nil {
			return nil, fmt.Errorf("create user store: %w", err)
		}
		if catalogSvc, err = catalog.NewServiceWithFile(cfg.CatalogStateFile); err != nil {
			return nil, fmt.Errorf("create catalog service: %w", err)
		}
	}

	authService, err := auth.NewService(userStore, auth.ServiceConfig{
		BcryptCost:       cfg.Auth.BcryptCost,
		SessionTTL:       cfg.Auth.SessionTTL,
		SessionStateFile: cfg.Auth.SessionStateFile,
		SessionStore:     sessionStore,
	})
	if err != nil {
		return nil, fmt.Errorf("create auth service: %w", err)
	}
	if err := authService.LoadSessionState(); err != nil {
		return nil, fmt.Errorf("load auth session state: %w", err)
	}
	if err := ensureBootstrapUser(authService, userStore, cfg.Auth, logger); err != nil {
		return nil, err
	}

	auditLog := audit.NewLogger(cfg.AuditLogFile)
	server := httpserver.New(cfg.HTTP, httpserver.Deps{
		Auth:    authService,
		Catalog: catalogSvc,
		Audit:   auditLog,
		Logger:  logger,
	})

	return &App{
		cfg:    cfg,
		log:    logger,
		db:     db,
		server: server,
		audit:  auditLog,
	}, nil
}

func ensureBootstrapUser(svc *auth.Service, users auth.UserStore, cfg config.AuthConfig, logger *slog.Logger) error {
	_, err := users.GetByEmail(cfg.BootstrapEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return fmt.Errorf("check bootstrap user: %w", err)
	}
	created, err := svc.Register(auth.User{Name: cfg.BootstrapName, Email: cfg.BootstrapEmail}, cfg.BootstrapPassword)
	if err != nil {
		return fmt.Errorf("create bootstrap user: %w", err)
	}
	logger.Info("bootstrap auth user created", "email", created.Email, "id", created.ID)
	return nil
}

// waitForDB pings until the database answers or timeout elapses.
func waitForDB(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	deadline := time.Now().Add(timeout)
	for {
		pingCtx, cancel := context.WithTimeout(ctx, dbPingInterval)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("database not ready within %s: %w", timeout, err)
		}
		logger.Warn("database not ready, retrying", "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for database: %w", ctx.Err())
		case <-time.After(dbPingInterval):
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.audit.Close(); err != nil {
			a.log.Warn("close audit log", "error", err)
		}
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	errCh := make(chan error, 1)

	go func() {
		a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)
		errCh <- a.server.Start()
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	}
}
