package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sunrise-events/sunrise/internal/auth"
	"github.com/sunrise-events/sunrise/internal/config"
	"github.com/sunrise-events/sunrise/internal/database"
	http_controllers "github.com/sunrise-events/sunrise/internal/http"
	"github.com/sunrise-events/sunrise/internal/scheduler"
	"github.com/sunrise-events/sunrise/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", timeout).Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	// Stop accepting requests before the background workers go away.
	err := srv.Shutdown(shutdownCtx)
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}

// Run wires every component from cfg and serves until SIGINT or SIGTERM.
func Run(cfg *config.Config, version string) error {
	log.Info().Str("version", version).Msg("starting sunrise")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	services := NewServices(db, cfg)

	var (
		taskClient  *tasks.Client
		maintenance *scheduler.Maintenance
	)
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewCleanupAuditEventsQueue(services.Audit),
			tasks.NewCleanupRateLimitsQueue(services.RateLimiter),
			tasks.NewPurgeImportLocksQueue(services.Locks),
		)
		go taskClient.Start(ctx)

		if cfg.Maintenance.Enabled {
			maintenance = scheduler.NewMaintenance(taskClient, scheduler.MaintenanceConfig{
				Schedule:           cfg.Maintenance.Schedule,
				AuditRetentionDays: cfg.Maintenance.AuditRetentionDays,
			})
			if err := maintenance.Start(ctx); err != nil {
				return fmt.Errorf("failed to start maintenance scheduler: %w", err)
			}
		}
	} else if cfg.Maintenance.Enabled {
		log.Warn().Msg("maintenance scheduler needs the task queue, set TASKS_ENABLED=true")
	}

	routerCfg := http_controllers.RouterConfig{
		Contacts:        services.Contacts,
		Exporter:        services.Contacts,
		Importer:        services.Pipeline,
		Limits:          services.Subscriptions,
		Locker:          services.Locks,
		Auditor:         services.Audit,
		AuditReader:     services.Audit,
		UserCounter:     services.Users,
		ContactStats:    services.Contacts,
		ImportCounter:   services.Audit,
		ExcludedUserIDs: cfg.Admin.ExcludedUserIDs,
		AuthConfig:      cfg.Auth,
		MaxImportBytes:  int64(cfg.Import.MaxFileSizeMB) << 20,
		HSTSMaxAge:      cfg.HTTP.HSTSMaxAge,
		Database:        db,
		Version:         version,
		MetricsEnabled:  cfg.Metrics.Enabled,
	}

	if cfg.Auth.Mode == config.AuthModeLocal {
		if err := configureAuth(ctx, db, cfg, services, &routerCfg); err != nil {
			return err
		}
	} else {
		log.Warn().Msg("authentication mode: none, every request runs as the default user")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		services.Audit.Wait()
	}

	return Serve(ctx, router, cfg, onShutdown)
}

func configureAuth(ctx context.Context, db *database.Database, cfg *config.Config, services *Services, routerCfg *http_controllers.RouterConfig) error {
	log.Info().Msg("authentication mode: local")

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	csrfSecret, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		return err
	}

	hasUsers, err := services.Auth.HasUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if !hasUsers {
		log.Warn().Msg("no users found, POST /setup to create an administrator account")
	}

	routerCfg.AuthService = services.Auth
	routerCfg.SessionManager = sessionManager
	routerCfg.AuthMiddleware = auth.NewMiddleware(services.Auth, sessionManager, cfg.Auth)
	routerCfg.RateLimiter = services.RateLimiter
	routerCfg.AuthAuditor = services.Audit
	routerCfg.CSRFSecret = csrfSecret
	routerCfg.SecureCookies = cfg.Auth.SecureCookies
	return nil
}

// csrfSecret derives the 32-byte CSRF key from the configured session
// secret, generating a random one when none is set.
func csrfSecret(configured string) ([]byte, error) {
	if configured == "" {
		generated, err := auth.GenerateSessionSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
		}
		log.Warn().Msg("generated session secret, set AUTH_SESSION_SECRET to keep sessions across restarts")
		configured = generated
	}

	if secret, err := hex.DecodeString(configured); err == nil && len(secret) == 32 {
		return secret, nil
	}
	if len(configured) != 32 {
		return nil, fmt.Errorf("AUTH_SESSION_SECRET must be 64 hex characters or 32 bytes, got %d characters", len(configured))
	}
	return []byte(configured), nil
}
