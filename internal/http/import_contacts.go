package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sunrise-events/sunrise/internal/audit"
	"github.com/sunrise-events/sunrise/internal/importers"
)

// DefaultMaxImportBytes bounds uploads when no limit is configured.
const DefaultMaxImportBytes = 10 << 20

// multipartOverhead leaves room for boundaries and the other form fields.
const multipartOverhead = 1 << 20

// ImportResponse is the body of a successful import.
type ImportResponse struct {
	Message      string `json:"message"`
	Imported     int    `json:"imported"`
	Duplicates   int    `json:"duplicates"`
	Total        int    `json:"total"`
	Valid        int    `json:"valid"`
	Skipped      int    `json:"skipped"`
	FailedChunks []int  `json:"failedChunks,omitempty"`
}

type ImportController struct {
	importer ContactImporter
	auditor  Auditor
	maxBytes int64
}

// NewImportController creates the upload controller. auditor may be nil;
// maxBytes <= 0 selects DefaultMaxImportBytes.
func NewImportController(importer ContactImporter, auditor Auditor, maxBytes int64) *ImportController {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImportBytes
	}
	return &ImportController{importer: importer, auditor: auditor, maxBytes: maxBytes}
}

// Import accepts a vCard or CSV upload and imports its contacts.
// POST /contacts/import (multipart: file, category, mode)
func (ic *ImportController) Import(c *gin.Context) {
	userID := GetUserID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			ic.respondTooLarge(c)
			return
		}
		respondImportError(c, importers.ErrNoFileProvided, importers.Result{})
		return
	}
	if fileHeader.Size > ic.maxBytes {
		ic.respondTooLarge(c)
		return
	}

	content, err := readUpload(fileHeader.Open)
	if err != nil {
		respondInternalError(c, err, "read upload")
		return
	}

	req := importers.ImportRequest{
		UserID:          userID,
		Filename:        fileHeader.Filename,
		Content:         content,
		DefaultCategory: strings.TrimSpace(c.PostForm("category")),
		Strict:          strings.EqualFold(c.PostForm("mode"), "strict"),
	}

	result, err := ic.importer.Import(c.Request.Context(), req)
	ic.audit(c, userID, fileHeader.Filename, result, err)
	if err != nil {
		respondImportError(c, err, result)
		return
	}

	c.JSON(http.StatusOK, ImportResponse{
		Message:      fmt.Sprintf("Successfully imported %d contacts", result.Inserted),
		Imported:     result.Inserted,
		Duplicates:   result.Duplicates,
		Total:        result.Total,
		Valid:        result.Valid,
		Skipped:      result.Skipped(),
		FailedChunks: result.FailedChunks,
	})
}

func (ic *ImportController) respondTooLarge(c *gin.Context) {
	respondError(c, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("file too large, the maximum size is %d MB", ic.maxBytes>>20))
}

func (ic *ImportController) audit(c *gin.Context, userID uint, filename string, result importers.Result, err error) {
	if ic.auditor == nil {
		return
	}

	ic.auditor.LogImport(userID, audit.ImportRecord{
		Filename:     filename,
		Format:       string(result.Format),
		Total:        result.Total,
		Valid:        result.Valid,
		Duplicates:   result.Duplicates,
		Inserted:     result.Inserted,
		FailedChunks: result.FailedChunks,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		Rejected:     importers.IsRejection(err),
		Err:          err,
	})
}

// respondImportError maps pipeline errors to HTTP responses. It is the only
// place import failures are translated.
func respondImportError(c *gin.Context, err error, result importers.Result) {
	var limitErr *importers.LimitError
	switch {
	case errors.Is(err, importers.ErrNoFileProvided), errors.Is(err, importers.ErrUnsupportedFormat):
		respondBadRequest(c, err.Error())

	case errors.Is(err, importers.ErrNoValidContacts):
		sample := result.Sample
		if sample == nil {
			sample = []importers.ImportedContact{}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No valid contacts found in file. Make sure each contact has an email address.",
			"debug": gin.H{
				"format": result.Format,
				"parsed": result.Total,
				"sample": sample,
			},
		})

	case errors.As(err, &limitErr):
		respondLimitError(c, limitErr)

	case errors.Is(err, importers.ErrImportInProgress):
		respondError(c, http.StatusConflict, err.Error())

	default:
		respondInternalError(c, err, "import contacts")
	}
}

// respondLimitError writes the 403 quota body. The outright-reached shape
// carries the tier, the would-exceed shape carries canImport.
func respondLimitError(c *gin.Context, limitErr *importers.LimitError) {
	body := gin.H{
		"error":        limitErr.Error(),
		"limitReached": true,
		"currentCount": limitErr.CurrentCount,
		"maxAllowed":   limitErr.MaxAllowed,
	}
	if limitErr.Reached {
		body["tier"] = limitErr.Tier
	} else {
		body["canImport"] = limitErr.CanImport
	}
	c.JSON(http.StatusForbidden, body)
}

func readUpload(open func() (multipart.File, error)) (string, error) {
	f, err := open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
