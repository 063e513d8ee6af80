package http

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-events/sunrise/internal/audit"
	auditrepo "github.com/sunrise-events/sunrise/internal/database/audit"
	"github.com/sunrise-events/sunrise/internal/database/contacts"
	"github.com/sunrise-events/sunrise/internal/database/users"
	"github.com/sunrise-events/sunrise/internal/entities"
)

func TestAdminController_Stats(t *testing.T) {
	db := newTestDatabase(t)
	contactRepo := contacts.NewRepository(db.DB)
	events := auditrepo.NewRepository(db.DB)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	internal := createUser(t, db, "internal")

	for _, c := range []entities.Contact{
		{UserID: alice, FirstName: "A", Email: "a@example.com", Category: "vip"},
		{UserID: alice, FirstName: "B", Email: "b@example.com", Category: "other"},
		{UserID: bob, FirstName: "C", Email: "c@example.com", Category: "vip"},
		{UserID: internal, FirstName: "D", Email: "d@example.com", Category: "test"},
	} {
		require.NoError(t, contactRepo.Create(t.Context(), &c))
	}

	for _, e := range []entities.AuditEvent{
		{UserID: alice, EventType: entities.AuditEventImport, CreatedAt: time.Now().Add(-time.Hour)},
		{UserID: bob, EventType: entities.AuditEventImport, CreatedAt: time.Now().Add(-48 * time.Hour)},
		{UserID: internal, EventType: entities.AuditEventImport, CreatedAt: time.Now().Add(-time.Hour)},
		{UserID: alice, EventType: entities.AuditEventExport, CreatedAt: time.Now().Add(-time.Hour)},
	} {
		require.NoError(t, events.LogEvent(t.Context(), &e))
	}

	controller := NewAdminController(users.NewRepository(db.DB), contactRepo, audit.NewService(events), []uint{internal})
	router := gin.New()
	router.GET("/admin/stats", controller.Stats)

	w := doJSON(router, http.MethodGet, "/admin/stats", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["users"])
	assert.Equal(t, float64(3), body["contacts"])
	assert.Equal(t, float64(1), body["importsLast24h"])
	assert.Equal(t, []any{
		map[string]any{"category": "vip", "count": float64(2)},
		map[string]any{"category": "other", "count": float64(1)},
	}, body["contactsByCategory"])
}

type failingCounter struct{}

func (failingCounter) CountExcluding(context.Context, []uint) (int64, error) {
	return 0, errors.New("no such table: users")
}

func TestAdminController_Stats_Error(t *testing.T) {
	db := newTestDatabase(t)
	contactRepo := contacts.NewRepository(db.DB)

	controller := NewAdminController(failingCounter{}, contactRepo, audit.NewService(auditrepo.NewRepository(db.DB)), nil)
	router := gin.New()
	router.GET("/admin/stats", controller.Stats)

	w := doJSON(router, http.MethodGet, "/admin/stats", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
