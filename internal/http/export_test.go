package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-events/sunrise/internal/database/contacts"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/importers"
)

func setupExportRouter(t *testing.T) (*gin.Engine, *recordingAuditor) {
	t.Helper()
	db := newTestDatabase(t)
	repo := contacts.NewRepository(db.DB)
	userID := createUser(t, db, "alice")
	otherID := createUser(t, db, "bob")

	for _, c := range []entities.Contact{
		{UserID: userID, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "+44 20 7946 0000", Category: "vip", Notes: "first, programmer"},
		{UserID: userID, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Category: "other", TelegramChatID: "12345"},
		{UserID: otherID, FirstName: "Hidden", Email: "hidden@example.com", Category: "other"},
	} {
		require.NoError(t, repo.Create(t.Context(), &c))
	}

	auditor := &recordingAuditor{}
	controller := NewExportController(repo, auditor)
	controller.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	router := gin.New()
	router.Use(asUser(userID, entities.UserRoleMember))
	router.GET("/contacts/export", controller.Export)
	return router, auditor
}

func TestExportController_Formats(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		wantContentType string
		wantFilename    string
		parse           func(string) []importers.ImportedContact
	}{
		{
			name:            "csv by default",
			query:           "",
			wantContentType: "text/csv",
			wantFilename:    "contacts-20250601.csv",
			parse:           importers.ParseCSV,
		},
		{
			name:            "vcard",
			query:           "?format=vcf",
			wantContentType: "text/vcard",
			wantFilename:    "contacts-20250601.vcf",
			parse:           importers.ParseVCard,
		},
		{
			name:            "vcard alias",
			query:           "?format=VCARD",
			wantContentType: "text/vcard",
			wantFilename:    "contacts-20250601.vcf",
			parse:           importers.ParseVCard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auditor := setupExportRouter(t)

			w := doJSON(router, http.MethodGet, "/contacts/export"+tt.query, "")

			require.Equal(t, http.StatusOK, w.Code)
			assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), tt.wantContentType))
			assert.Contains(t, w.Header().Get("Content-Disposition"), tt.wantFilename)

			parsed := tt.parse(w.Body.String())
			require.Len(t, parsed, 2)
			assert.Equal(t, "Ada", parsed[0].FirstName)
			assert.Equal(t, "Lovelace", parsed[0].LastName)
			assert.Equal(t, "ada@example.com", parsed[0].Email)
			assert.Equal(t, "vip", parsed[0].Category)
			assert.Equal(t, "grace@example.com", parsed[1].Email)
			assert.Equal(t, "12345", parsed[1].TelegramChatID)
			assert.NotContains(t, w.Body.String(), "hidden@example.com")

			assert.Equal(t, []int{2}, auditor.exported)
		})
	}
}

func TestExportController_UnknownFormat(t *testing.T) {
	router, auditor := setupExportRouter(t)

	w := doJSON(router, http.MethodGet, "/contacts/export?format=xlsx", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, auditor.exports)
}
