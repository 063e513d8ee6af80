package http

import (
	"context"
	"time"

	"github.com/sunrise-events/sunrise/internal/audit"
	"github.com/sunrise-events/sunrise/internal/database/contacts"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/importers"
)

// This file collects the narrow interfaces controllers depend on. Each
// controller takes only what it uses so tests can substitute fakes.

// ContactStore provides owner-scoped contact CRUD.
// database/contacts.Repository implements it.
type ContactStore interface {
	List(ctx context.Context, userID uint, opts contacts.ListOptions) ([]entities.Contact, int64, error)
	GetForUser(ctx context.Context, userID, id uint) (*entities.Contact, error)
	Create(ctx context.Context, contact *entities.Contact) error
	Update(ctx context.Context, contact *entities.Contact) error
	Delete(ctx context.Context, userID, id uint) error
	EmailExists(ctx context.Context, userID uint, email string, excludeID uint) (bool, error)
}

// ContactLister returns every contact of a user for export.
type ContactLister interface {
	AllForUser(ctx context.Context, userID uint) ([]entities.Contact, error)
}

// ContactImporter runs the import pipeline. importers.Pipeline implements it.
type ContactImporter interface {
	Import(ctx context.Context, req importers.ImportRequest) (importers.Result, error)
}

// Auditor records user-visible actions. audit.Service implements it.
type Auditor interface {
	LogImport(userID uint, rec audit.ImportRecord)
	LogExport(userID uint, format string, count int, err error)
	LogContactChange(userID uint, eventType entities.AuditEventType, contactID uint, name string)
}

// AuditReader lists a user's audit trail.
type AuditReader interface {
	GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// --- Admin statistics ---

type UserCounter interface {
	CountExcluding(ctx context.Context, excludedUserIDs []uint) (int64, error)
}

type ContactStats interface {
	CountExcluding(ctx context.Context, excludedUserIDs []uint) (int64, error)
	CountByCategoryExcluding(ctx context.Context, excludedUserIDs []uint) ([]contacts.CategoryCount, error)
}

type ImportCounter interface {
	CountImportsSince(ctx context.Context, since time.Time, excludedUserIDs []uint) (int64, error)
}

// Pinger checks storage connectivity. database.Database implements it.
type Pinger interface {
	Ping() error
}
