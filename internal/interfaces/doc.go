// Package interfaces documents the core abstractions used throughout the application.
//
// Interfaces live next to their consumers. This package only collects the
// compile-time checks that tie them to their implementations and describes
// the extension points.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - importers.ContactStore: Batch inserts and existing-email lookup (internal/importers/pipeline.go)
//   - importers.Locker: Per-user import lock (internal/importers/pipeline.go)
//   - http.ContactStore: Owner-scoped contact CRUD (internal/http/stores.go)
//   - http.ContactLister: Full address book for export (internal/http/stores.go)
//   - http.UserCounter, http.ContactStats, http.ImportCounter: Admin statistics (internal/http/stores.go)
//   - subscriptions.ContactCounter: Contacts owned by a user (internal/subscriptions/service.go)
//   - auth.RateLimitStore: Login attempt records (internal/auth/ratelimit.go)
//
// ## Service Interfaces
//
//   - importers.LimitChecker: Tier and contact allowance (internal/importers/quota.go)
//   - http.ContactImporter: The import pipeline (internal/http/stores.go)
//   - http.Auditor, auth.Auditor: Audit trail writers (internal/http/stores.go, internal/auth/handlers.go)
//
// ## Background Work Interfaces
//
//   - scheduler.Enqueuer: Task queue used by the maintenance cron (internal/scheduler/maintenance.go)
//   - tasks.ImportLockPurger, tasks.RateLimitCleaner, tasks.AuditEventCleaner:
//     Targets of the maintenance tasks (internal/tasks/)
//
// # Adding a New Import Format
//
//  1. Add the format constant and extension to internal/importers/format.go
//
//     const FormatJSON Format = "json"
//
//  2. Write the parser in internal/importers/ returning []ImportedContact.
//     Parsers never fail on malformed records; they drop them.
//
//     func ParseJSON(content string) []ImportedContact
//
//  3. Dispatch to it from importers.Parse. The pipeline, quota check and
//     HTTP upload endpoint pick it up without further changes.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Register the entity in database.Models so AutoMigrate creates it
//
//  4. Add compile-time check:
//
//     var _ http.SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
