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

	"caseguard/internal/authz"
	"caseguard/internal/config"
	"caseguard/internal/database"
	"caseguard/internal/handler"
	"caseguard/internal/metrics"
	"caseguard/internal/middleware"
	"caseguard/internal/repository"
	"caseguard/internal/respond"
	"caseguard/internal/router"
	"caseguard/internal/service"
	"caseguard/internal/session"
)

type App struct {
	server   *http.Server
	cleanups cleanupStack
}

// cleanupStack releases resources in reverse order of acquisition.
type cleanupStack []func(ctx context.Context)

func (s cleanupStack) run(ctx context.Context) {
	for i := len(s) - 1; i >= 0; i-- {
		s[i](ctx)
	}
}

func New(cfg *config.Config) (*App, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cleanups := cleanupStack{func(context.Context) { db.Close() }}
	fail := func(err error) (*App, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cleanups.run(ctx)
		return nil, err
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		return fail(fmt.Errorf("failed to ensure database schema: %w", err))
	}

	pool := db.Pool
	principalRepo := repository.NewPrincipalRepository(pool)
	grantRepo := repository.NewGrantRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	slog.Info("database ready")

	appMetrics := metrics.New()
	auditService := service.NewAuditService(activityRepo, cfg.AuditBufferSize, appMetrics)
	cleanups = append(cleanups, func(ctx context.Context) {
		if err := auditService.Close(ctx); err != nil {
			slog.Warn("audit queue not drained", "error", err)
		}
	})
	responder := respond.New(cfg.IsDevelopment(), auditService)

	tokens, err := service.NewTokenIssuer(service.TokenConfig{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.JWTAccessTTL,
		RenewTTL:   cfg.JWTRenewTTL,
		RefreshTTL: cfg.JWTRefreshTTL,
	}, principalRepo)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize token issuer: %w", err))
	}

	verifier := service.NewCredentialVerifier(principalRepo, auditService)
	authService := service.NewAuthService(principalRepo, verifier, tokens, auditService)
	userService := service.NewUserService(principalRepo, auditService)
	grantService := service.NewGrantService(grantRepo, principalRepo, resourceRepo, auditService)
	resourceService := service.NewResourceService(resourceRepo, auditService)

	if err := userService.BootstrapAdmin(context.Background(), cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		return fail(err)
	}

	engine := authz.NewEngine(grantRepo, resourceRepo,
		authz.WithCreateRule(authz.CreateRule(cfg.AuthzCreateRule)),
		authz.WithObserver(appMetrics),
	)
	monitor := middleware.NewSessionMonitor(tokens, principalRepo, session.NewPolicy(cfg.Session), auditService, appMetrics, responder)
	guards := middleware.NewGuards(engine, responder)

	appRouter := router.New(cfg, responder, monitor, guards, appMetrics, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, responder),
		User:     handler.NewUserHandler(userService, responder),
		Grant:    handler.NewGrantHandler(grantService, responder),
		Resource: handler.NewResourceHandler(resourceService, responder),
		Activity: handler.NewActivityHandler(auditService, responder),
		Health:   handler.NewHealthHandler(db, responder),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:   server,
		cleanups: cleanups,
	}, nil
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

	// Stop taking requests first so nothing appends to the audit queue while it drains.
	shutdownErr := a.server.Shutdown(ctx)
	a.Close(ctx)

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

// Handler exposes the fully wired router, for serving under httptest.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Close drains the audit queue and releases the database pool.
func (a *App) Close(ctx context.Context) {
	a.cleanups.run(ctx)
}
