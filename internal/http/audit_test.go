package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-events/sunrise/internal/audit"
	auditrepo "github.com/sunrise-events/sunrise/internal/database/audit"
	"github.com/sunrise-events/sunrise/internal/entities"
)

func TestAuditController_GetAuditEvents(t *testing.T) {
	db := newTestDatabase(t)
	repo := auditrepo.NewRepository(db.DB)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Now().Add(-time.Hour)
	for i, action := range []string{"csv_import", "csv_export", "vcard_import"} {
		require.NoError(t, repo.LogEvent(t.Context(), &entities.AuditEvent{
			UserID:    alice,
			EventType: entities.AuditEventImport,
			Action:    action,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.LogEvent(t.Context(), &entities.AuditEvent{UserID: bob, Action: "login"}))

	router := gin.New()
	router.Use(asUser(alice, entities.UserRoleMember))
	router.GET("/api/audit", NewAuditController(audit.NewService(repo)).GetAuditEvents)

	w := doJSON(router, http.MethodGet, "/api/audit?limit=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, true, body["has_more"])
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 2)
	assert.Equal(t, "vcard_import", data[0].(map[string]any)["action"])
}
