package http

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-events/sunrise/internal/database/contacts"
	"github.com/sunrise-events/sunrise/internal/database/locks"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/importers"
)

const threeContactsCSV = "first_name,last_name,email,phone\n" +
	"Ada,Lovelace,ada@example.com,+44 20 7946 0000\n" +
	"Grace,Hopper,grace@example.com,\n" +
	"Linus,,,555-0100\n"

type importFixture struct {
	router  *gin.Engine
	repo    *contacts.Repository
	locks   *locks.Repository
	auditor *recordingAuditor
	userID  uint
}

func setupImportRouter(t *testing.T, maxContacts int, maxBytes int64) importFixture {
	t.Helper()
	db := newTestDatabase(t)
	repo := contacts.NewRepository(db.DB)
	lockRepo := locks.NewRepository(db.DB)
	userID := createUser(t, db, "alice")

	pipeline := importers.NewPipeline(repo, newLimits(db, repo, maxContacts), lockRepo, importers.PipelineConfig{ChunkSize: 2})
	auditor := &recordingAuditor{}

	router := gin.New()
	router.Use(asUser(userID, entities.UserRoleMember))
	router.POST("/contacts/import", NewImportController(pipeline, auditor, maxBytes).Import)

	return importFixture{router: router, repo: repo, locks: lockRepo, auditor: auditor, userID: userID}
}

// uploadRequest builds a multipart import request. An empty filename omits
// the file part.
func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/contacts/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportController_Success(t *testing.T) {
	f := setupImportRouter(t, 100, 0)

	w := serve(f.router, uploadRequest(t, "contacts.csv", threeContactsCSV, map[string]string{"category": "friends"}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Successfully imported 2 contacts", body["message"])
	assert.Equal(t, float64(2), body["imported"])
	assert.Equal(t, float64(0), body["duplicates"])
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["valid"])
	assert.Equal(t, float64(1), body["skipped"])
	assert.NotContains(t, body, "failedChunks")

	stored, err := f.repo.AllForUser(t.Context(), f.userID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "friends", stored[0].Category)

	require.Len(t, f.auditor.imports, 1)
	assert.Equal(t, "contacts.csv", f.auditor.imports[0].Filename)
	assert.NoError(t, f.auditor.imports[0].Err)
}

func TestImportController_ReimportCountsDuplicates(t *testing.T) {
	f := setupImportRouter(t, 100, 0)
	require.Equal(t, http.StatusOK, serve(f.router, uploadRequest(t, "contacts.csv", threeContactsCSV, nil)).Code)

	w := serve(f.router, uploadRequest(t, "contacts.csv", threeContactsCSV, nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["imported"])
	assert.Equal(t, float64(2), body["duplicates"])
	assert.Equal(t, float64(3), body["skipped"])
}

func TestImportController_VCard(t *testing.T) {
	f := setupImportRouter(t, 100, 0)
	vcard := "BEGIN:VCARD\r\nVERSION:3.0\r\nN:Lovelace;Ada;;;\r\nEMAIL;TYPE=INTERNET:ada@example.com\r\nEND:VCARD\r\n"

	w := serve(f.router, uploadRequest(t, "contacts.vcf", vcard, nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), decodeBody(t, w)["imported"])
}

func TestImportController_BadRequests(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     string
		wantError   string
		wantAudited bool
	}{
		{
			name:      "missing file",
			wantError: importers.ErrNoFileProvided.Error(),
		},
		{
			name:        "unsupported format",
			filename:    "notes.txt",
			content:     "just some text",
			wantError:   importers.ErrUnsupportedFormat.Error(),
			wantAudited: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupImportRouter(t, 100, 0)

			w := serve(f.router, uploadRequest(t, tt.filename, tt.content, map[string]string{"category": "x"}))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantError, decodeBody(t, w)["error"])

			if tt.wantAudited {
				require.Len(t, f.auditor.imports, 1)
				assert.True(t, f.auditor.imports[0].Rejected)
			} else {
				assert.Empty(t, f.auditor.imports)
			}
		})
	}
}

func TestImportController_NoValidContacts(t *testing.T) {
	f := setupImportRouter(t, 100, 0)
	content := "first_name,phone\nAda,555-0100\nGrace,555-0101\n"

	w := serve(f.router, uploadRequest(t, "contacts.csv", content, nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["error"], "No valid contacts")
	debug, ok := body["debug"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "csv", debug["format"])
	assert.Equal(t, float64(2), debug["parsed"])
	assert.Len(t, debug["sample"], 2)

	require.Len(t, f.auditor.imports, 1)
	assert.True(t, f.auditor.imports[0].Rejected)
}

func TestImportController_QuotaShapes(t *testing.T) {
	tests := []struct {
		name        string
		maxContacts int
		seeded      int
		wantKey     string
		wantValue   any
		missingKey  string
	}{
		{
			name:        "limit already reached",
			maxContacts: 1,
			seeded:      1,
			wantKey:     "tier",
			wantValue:   string(entities.TierFree),
			missingKey:  "canImport",
		},
		{
			name:        "would exceed",
			maxContacts: 2,
			seeded:      1,
			wantKey:     "canImport",
			wantValue:   float64(1),
			missingKey:  "tier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupImportRouter(t, tt.maxContacts, 0)
			for i := 0; i < tt.seeded; i++ {
				require.NoError(t, f.repo.Create(t.Context(), &entities.Contact{
					UserID: f.userID, FirstName: "Seed", Email: "seed" + string(rune('a'+i)) + "@example.com",
				}))
			}

			w := serve(f.router, uploadRequest(t, "contacts.csv", threeContactsCSV, nil))

			require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
			body := decodeBody(t, w)
			assert.Equal(t, true, body["limitReached"])
			assert.Equal(t, float64(tt.seeded), body["currentCount"])
			assert.Equal(t, float64(tt.maxContacts), body["maxAllowed"])
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
			assert.NotContains(t, body, tt.missingKey)

			count, err := f.repo.CountForUser(t.Context(), f.userID)
			require.NoError(t, err)
			assert.Equal(t, int64(tt.seeded), count)

			require.Len(t, f.auditor.imports, 1)
			assert.True(t, f.auditor.imports[0].Rejected)
		})
	}
}

func TestImportController_ImportInProgress(t *testing.T) {
	f := setupImportRouter(t, 100, 0)
	_, err := f.locks.Acquire(t.Context(), f.userID, time.Minute)
	require.NoError(t, err)

	w := serve(f.router, uploadRequest(t, "contacts.csv", threeContactsCSV, nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, importers.ErrImportInProgress.Error(), decodeBody(t, w)["error"])
}

func TestImportController_TooLarge(t *testing.T) {
	f := setupImportRouter(t, 100, 16)

	w := serve(f.router, uploadRequest(t, "contacts.csv", threeContactsCSV, nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

type failingImporter struct{ err error }

func (f failingImporter) Import(context.Context, importers.ImportRequest) (importers.Result, error) {
	return importers.Result{}, f.err
}

func TestImportController_InternalError(t *testing.T) {
	router := gin.New()
	router.Use(asUser(1, entities.UserRoleMember))
	auditor := &recordingAuditor{}
	router.POST("/contacts/import", NewImportController(failingImporter{err: errors.New("database is locked")}, auditor, 0).Import)

	w := serve(router, uploadRequest(t, "contacts.csv", threeContactsCSV, nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, w)["error"])

	require.Len(t, auditor.imports, 1)
	assert.False(t, auditor.imports[0].Rejected)
	assert.Error(t, auditor.imports[0].Err)
}
