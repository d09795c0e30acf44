package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jxiaof/next16-demo/internal/config"
	"github.com/jxiaof/next16-demo/internal/managers"
	"github.com/jxiaof/next16-demo/internal/routing"
	"github.com/jxiaof/next16-demo/internal/services"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Application bundles the long-lived dependencies shared by the serve and reap commands.
type Application struct {
	cfg         *config.Config
	pool        *pgxpool.Pool
	databaseMgr managers.DatabaseMgr
	sessionMgr  managers.SessionMgr
	authService *services.AuthService
}

// NewApplication connects to the database and wires managers and services.
func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	SetLogLevel(cfg.LogLevel)

	pool, err := initializeDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	databaseMgr := managers.NewDatabaseManager(pool)
	passwordMgr := managers.NewPasswordManager(cfg.Auth.BcryptCost)
	mailMgr := managers.NewMailManager(cfg)
	sessionMgr := managers.NewSessionManager(cfg.IsProduction())

	authService := services.NewAuthService(databaseMgr, passwordMgr, mailMgr, services.Options{
		BaseURL:       cfg.BaseURL,
		SessionTTL:    cfg.Auth.SessionTTL,
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
	})

	return &Application{
		cfg:         cfg,
		pool:        pool,
		databaseMgr: databaseMgr,
		sessionMgr:  sessionMgr,
		authService: authService,
	}, nil
}

// Close releases the connection pool.
func (a *Application) Close() {
	a.pool.Close()
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight requests.
func (a *Application) Serve(ctx context.Context) error {
	r := routing.InitRouter(a.databaseMgr, a.sessionMgr, a.authService, a.cfg.CorsOrigins)
	log.Info("Initialized router")

	if a.cfg.ReapInterval > 0 {
		go a.reapPeriodically(ctx, a.cfg.ReapInterval)
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %s...", a.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Reap removes expired sessions and reset tokens once.
func (a *Application) Reap(ctx context.Context) error {
	sessions, resetTokens, err := a.authService.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"sessions":    sessions,
		"resetTokens": resetTokens,
	}).Info("Purged expired credentials")
	return nil
}

func (a *Application) reapPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Reap(ctx); err != nil {
				log.Errorf("Error purging expired credentials: %v", err)
			}
		}
	}
}

func initializeDatabase(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	log.Info("Initializing database")

	poolConfig, err := pgxpool.ParseConfig(dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error configuring database: %w", err)
	}

	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	log.Info("Connected to database")
	return pool, nil
}

// SetLogLevel maps LOG_LEVEL onto logrus, defaulting to info.
func SetLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)

	log.SetOutput(os.Stdout)
}
