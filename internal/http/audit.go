package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sunrise-events/sunrise/internal/entities"
)

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{reader: reader}
}

// GetAuditEvents returns the caller's audit trail, newest first.
// GET /api/audit?limit=&offset=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, offset := parsePagination(c)

	events, total, err := ac.reader.GetEvents(c.Request.Context(), GetUserID(c), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, newPaginatedResponse(events, total, limit, offset))
}
