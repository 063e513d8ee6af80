package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-events/sunrise/internal/audit"
	"github.com/sunrise-events/sunrise/internal/auth"
	"github.com/sunrise-events/sunrise/internal/config"
	"github.com/sunrise-events/sunrise/internal/database"
	"github.com/sunrise-events/sunrise/internal/database/contacts"
	subsrepo "github.com/sunrise-events/sunrise/internal/database/subscriptions"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/subscriptions"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewSilentDatabase(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// createUser inserts a bare user row so contacts can reference it.
func createUser(t *testing.T, db *database.Database, username string) uint {
	t.Helper()
	user := entities.User{Username: username, Email: username + "@example.com", Role: entities.UserRoleMember}
	require.NoError(t, db.DB.Create(&user).Error)
	return user.ID
}

// asUser injects an authenticated identity the way auth.Middleware does.
func asUser(userID uint, role entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, userID)
		c.Set(auth.ContextKeyRole, role)
		c.Set(auth.ContextKeyAuthType, auth.AuthTypeBearer)
		c.Next()
	}
}

// recordingAuditor captures audit calls in memory.
type recordingAuditor struct {
	mu       sync.Mutex
	imports  []audit.ImportRecord
	exports  []string
	changes  []entities.AuditEventType
	exported []int
}

func (a *recordingAuditor) LogImport(_ uint, rec audit.ImportRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.imports = append(a.imports, rec)
}

func (a *recordingAuditor) LogExport(_ uint, format string, count int, _ error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exports = append(a.exports, format)
	a.exported = append(a.exported, count)
}

func (a *recordingAuditor) LogContactChange(_ uint, eventType entities.AuditEventType, _ uint, _ string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.changes = append(a.changes, eventType)
}

// newLimits returns a subscription service whose free plan allows maxContacts.
func newLimits(db *database.Database, repo *contacts.Repository, maxContacts int) *subscriptions.Service {
	return subscriptions.NewService(subsrepo.NewRepository(db.DB), repo, config.Plans{
		FreeMaxContacts:       maxContacts,
		BasicMaxContacts:      500,
		ProMaxContacts:        5000,
		EnterpriseMaxContacts: config.UnlimitedContacts,
	})
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
