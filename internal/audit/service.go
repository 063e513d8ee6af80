package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sunrise-events/sunrise/internal/database/audit"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/utils"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.Error().Err(err).Str("action", event.Action).Msg("failed to log audit event")
		}
	}()
}

// Wait blocks until every event passed to LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// ImportRecord summarises one contact import attempt.
type ImportRecord struct {
	Filename     string
	Format       string
	Total        int
	Valid        int
	Duplicates   int
	Inserted     int
	FailedChunks []int
	IPAddress    string
	UserAgent    string
	// Rejected marks attempts refused for a user-facing reason (see
	// importers.IsRejection) as opposed to server failures.
	Rejected bool
	Err      error
}

// LogImport records a contact import attempt, successful or not.
func (s *Service) LogImport(userID uint, rec ImportRecord) {
	action := "contact_import"
	if rec.Format != "" {
		action = rec.Format + "_import"
	}

	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventImport,
		Action:      action,
		Description: truncate(fmt.Sprintf("Imported %d of %d contacts from %s", rec.Inserted, rec.Total, utils.SanitizeFilename(rec.Filename)), 500),
		EntityType:  "contact",
		IPAddress:   rec.IPAddress,
		UserAgent:   truncate(rec.UserAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"total":      rec.Total,
		"valid":      rec.Valid,
		"duplicates": rec.Duplicates,
		"inserted":   rec.Inserted,
	}
	if len(rec.FailedChunks) > 0 {
		metadata["failed_chunks"] = rec.FailedChunks
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if rec.Err != nil {
		event.Status = entities.AuditStatusFailed
		if rec.Rejected {
			event.Status = entities.AuditStatusRejected
		}
		event.ErrorMsg = truncate(rec.Err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogExport records an export event.
func (s *Service) LogExport(userID uint, format string, count int, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventExport,
		Action:      format + "_export",
		Description: fmt.Sprintf("Exported %d contacts", count),
		EntityType:  "contact",
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogContactChange records a create, update or delete of a single contact.
func (s *Service) LogContactChange(userID uint, eventType entities.AuditEventType, contactID uint, name string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   eventType,
		Action:      "contact_" + string(eventType),
		Description: truncate(string(eventType)+" contact: "+name, 500),
		EntityType:  "contact",
		EntityID:    &contactID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogSettings records a settings change event such as a plan change.
func (s *Service) LogSettings(userID uint, action, description string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, limit, offset)
}

// CountImportsSince counts import attempts after since, ignoring excluded users.
func (s *Service) CountImportsSince(ctx context.Context, since time.Time, excludedUserIDs []uint) (int64, error) {
	return s.repo.CountSince(ctx, entities.AuditEventImport, since, excludedUserIDs)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
