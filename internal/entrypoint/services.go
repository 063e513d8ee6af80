package entrypoint

import (
	"github.com/sunrise-events/sunrise/internal/audit"
	"github.com/sunrise-events/sunrise/internal/auth"
	"github.com/sunrise-events/sunrise/internal/config"
	"github.com/sunrise-events/sunrise/internal/database"
	auditrepo "github.com/sunrise-events/sunrise/internal/database/audit"
	"github.com/sunrise-events/sunrise/internal/database/contacts"
	"github.com/sunrise-events/sunrise/internal/database/locks"
	"github.com/sunrise-events/sunrise/internal/database/ratelimits"
	subsrepo "github.com/sunrise-events/sunrise/internal/database/subscriptions"
	"github.com/sunrise-events/sunrise/internal/database/users"
	"github.com/sunrise-events/sunrise/internal/importers"
	"github.com/sunrise-events/sunrise/internal/subscriptions"
)

// Services holds the repositories and domain services shared by the server
// and the CLI.
type Services struct {
	Contacts      *contacts.Repository
	Locks         *locks.Repository
	Users         *users.Repository
	Subscriptions *subscriptions.Service
	Audit         *audit.Service
	Auth          *auth.Service
	RateLimiter   *auth.RateLimiter
	Pipeline      *importers.Pipeline
}

// NewServices wires every repository and service on top of db.
func NewServices(db *database.Database, cfg *config.Config) *Services {
	contactRepo := contacts.NewRepository(db.DB)
	lockRepo := locks.NewRepository(db.DB)
	subscriptionService := subscriptions.NewService(subsrepo.NewRepository(db.DB), contactRepo, cfg.Plans)

	return &Services{
		Contacts:      contactRepo,
		Locks:         lockRepo,
		Users:         users.NewRepository(db.DB),
		Subscriptions: subscriptionService,
		Audit:         audit.NewService(auditrepo.NewRepository(db.DB)),
		Auth:          auth.NewService(db.DB, cfg.Auth),
		RateLimiter: auth.NewRateLimiter(ratelimits.NewRepository(db.DB), auth.RateLimitConfig{
			MaxAttempts:     cfg.Auth.MaxLoginAttempts,
			WindowDuration:  cfg.Auth.RateLimitWindow,
			LockoutDuration: cfg.Auth.LockoutDuration,
		}),
		Pipeline: importers.NewPipeline(contactRepo, subscriptionService, lockRepo, importers.PipelineConfig{
			ChunkSize: cfg.Import.ChunkSize,
			Workers:   cfg.Import.Workers,
			LockTTL:   cfg.Import.LockTTL,
		}),
	}
}
