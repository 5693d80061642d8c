package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	auditUseCase "github.com/allisson/gatekeeper/internal/audit/usecase"
	"github.com/allisson/gatekeeper/internal/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
)

// AuditHandler handles the administrative audit query endpoint.
type AuditHandler struct {
	auditLogger auditUseCase.AuditLogger
	logger      *slog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditLogger auditUseCase.AuditLogger, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// QueryHandler scans the audit files newest first.
// GET /admin/audit-logs?client_id=&operation=&status=&since=&until=&offset=&limit=
// - Returns 200 OK with matching entries. Timestamps use RFC 3339.
func (h *AuditHandler) QueryHandler(c *gin.Context) {
	filter := auditUseCase.QueryFilter{
		ClientID:  c.Query("client_id"),
		Operation: c.Query("operation"),
		Status:    c.Query("status"),
	}

	if since := c.Query("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid since parameter: must be RFC 3339"), h.logger)
			return
		}
		filter.Since = parsed
	}

	if until := c.Query("until"); until != "" {
		parsed, err := time.Parse(time.RFC3339, until)
		if err != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid until parameter: must be RFC 3339"), h.logger)
			return
		}
		filter.Until = parsed
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid offset parameter: must be >= 0"), h.logger)
			return
		}
		filter.Offset = offset
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 1000 {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid limit parameter: must be between 1 and 1000"), h.logger)
			return
		}
		filter.Limit = limit
	}

	entries, err := h.auditLogger.Query(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEntriesToListResponse(entries))
}
