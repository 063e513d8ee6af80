package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/importers"
)

const (
	exportFormatCSV   = "csv"
	exportFormatVCard = "vcf"
)

type exportWriter struct {
	contentType string
	write       func(buf *bytes.Buffer, contacts []entities.Contact) error
}

var exportWriters = map[string]exportWriter{
	exportFormatCSV: {
		contentType: "text/csv; charset=utf-8",
		write: func(buf *bytes.Buffer, contacts []entities.Contact) error {
			return importers.WriteCSV(buf, contacts)
		},
	},
	exportFormatVCard: {
		contentType: "text/vcard; charset=utf-8",
		write: func(buf *bytes.Buffer, contacts []entities.Contact) error {
			return importers.WriteVCard(buf, contacts)
		},
	},
}

type ExportController struct {
	lister  ContactLister
	auditor Auditor
	now     func() time.Time
}

// NewExportController creates the export controller. auditor may be nil.
func NewExportController(lister ContactLister, auditor Auditor) *ExportController {
	return &ExportController{lister: lister, auditor: auditor, now: time.Now}
}

// Export downloads every contact of the caller as CSV or vCard.
// GET /contacts/export?format=csv|vcf
func (ec *ExportController) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", exportFormatCSV))
	if format == "vcard" {
		format = exportFormatVCard
	}
	writer, ok := exportWriters[format]
	if !ok {
		respondBadRequest(c, "format must be csv or vcf")
		return
	}

	userID := GetUserID(c)
	items, err := ec.lister.AllForUser(c.Request.Context(), userID)
	if err != nil {
		ec.audit(userID, format, 0, err)
		respondInternalError(c, err, "export contacts")
		return
	}

	// Rendered into memory first so a write error still yields a clean 500.
	var buf bytes.Buffer
	if err := writer.write(&buf, items); err != nil {
		ec.audit(userID, format, 0, err)
		respondInternalError(c, err, "render export")
		return
	}
	ec.audit(userID, format, len(items), nil)

	filename := fmt.Sprintf("contacts-%s.%s", ec.now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, writer.contentType, buf.Bytes())
}

func (ec *ExportController) audit(userID uint, format string, count int, err error) {
	if ec.auditor != nil {
		ec.auditor.LogExport(userID, format, count, err)
	}
}
