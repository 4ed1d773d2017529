package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/audit"
	"github.com/mrlokans/librarydesk/internal/entities"
)

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{reader: reader}
}

// GetAuditEvents returns one page of the audit trail.
// GET /api/audit?type=catalog&status=failed&entity_type=book&entity_id=3&since=2024-01-01T00:00:00Z&page=1&limit=25
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	f, ok := auditFilter(c)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page", 1, 1, 1<<20)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 25, 1, 100)
	if !ok {
		return
	}
	offset := (page - 1) * limit

	events, total, err := ac.reader.Events(c.Request.Context(), f, limit, offset)
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: max(1, int((total+int64(limit)-1)/int64(limit))),
	})
}

func auditFilter(c *gin.Context) (audit.Filter, bool) {
	f := audit.Filter{
		Type:       entities.AuditEventType(c.Query("type")),
		Status:     entities.AuditStatus(c.Query("status")),
		EntityType: c.Query("entity_type"),
	}
	if raw := c.Query("entity_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			respondBadRequest(c, "invalid entity_id")
			return f, false
		}
		f.EntityID = uint(id)
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, "since must be an RFC 3339 timestamp")
			return f, false
		}
		f.Since = since
	}
	return f, true
}
