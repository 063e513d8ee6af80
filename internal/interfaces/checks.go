package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/sunrise-events/sunrise/internal/audit"
	"github.com/sunrise-events/sunrise/internal/auth"
	"github.com/sunrise-events/sunrise/internal/database"
	"github.com/sunrise-events/sunrise/internal/database/contacts"
	"github.com/sunrise-events/sunrise/internal/database/locks"
	"github.com/sunrise-events/sunrise/internal/database/ratelimits"
	"github.com/sunrise-events/sunrise/internal/database/users"
	"github.com/sunrise-events/sunrise/internal/http"
	"github.com/sunrise-events/sunrise/internal/importers"
	"github.com/sunrise-events/sunrise/internal/scheduler"
	"github.com/sunrise-events/sunrise/internal/subscriptions"
	"github.com/sunrise-events/sunrise/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Contact storage
var _ importers.ContactStore = (*contacts.Repository)(nil)
var _ http.ContactStore = (*contacts.Repository)(nil)
var _ http.ContactLister = (*contacts.Repository)(nil)
var _ http.ContactStats = (*contacts.Repository)(nil)
var _ subscriptions.ContactCounter = (*contacts.Repository)(nil)

var _ http.UserCounter = (*users.Repository)(nil)

// Import locks
var _ importers.Locker = (*locks.Repository)(nil)
var _ tasks.ImportLockPurger = (*locks.Repository)(nil)

var _ auth.RateLimitStore = (*ratelimits.Repository)(nil)

var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.ContactImporter = (*importers.Pipeline)(nil)
var _ importers.LimitChecker = (*subscriptions.Service)(nil)
var _ http.PasswordChanger = (*auth.Service)(nil)

// Audit
var _ auth.Auditor = (*audit.Service)(nil)
var _ http.Auditor = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.ImportCounter = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ tasks.RateLimitCleaner = (*auth.RateLimiter)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
