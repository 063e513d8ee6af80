package http

import (
	"github.com/sunrise-events/sunrise/internal/auth"
	"github.com/sunrise-events/sunrise/internal/config"
	"github.com/sunrise-events/sunrise/internal/importers"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Contacts
	Contacts ContactStore
	Exporter ContactLister
	Importer ContactImporter
	Limits   importers.LimitChecker
	Locker   importers.Locker

	// Auditing. Auditor and AuditReader may be nil.
	Auditor     Auditor
	AuditReader AuditReader

	// Admin statistics, registered only when all three are set.
	UserCounter     UserCounter
	ContactStats    ContactStats
	ImportCounter   ImportCounter
	ExcludedUserIDs []uint

	// Authentication. AuthMiddleware nil means every request runs as
	// auth.DefaultUserID.
	AuthConfig     config.Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter
	AuthAuditor    auth.Auditor
	CSRFSecret     []byte
	SecureCookies  bool
	HSTSMaxAge     int

	// Upload limit in bytes, 0 selects DefaultMaxImportBytes.
	MaxImportBytes int64

	// Health and metrics
	Database       Pinger
	Version        string
	MetricsEnabled bool
}
