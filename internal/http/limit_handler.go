package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/gatekeeper/internal/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
	ratelimitUseCase "github.com/allisson/gatekeeper/internal/ratelimit/usecase"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// LimitHandler handles the administrative rate-limit endpoints.
type LimitHandler struct {
	rateLimiter ratelimitUseCase.RateLimiter
	logger      *slog.Logger
}

// NewLimitHandler creates a new limit handler.
func NewLimitHandler(rateLimiter ratelimitUseCase.RateLimiter, logger *slog.Logger) *LimitHandler {
	return &LimitHandler{
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// UpsertHandler adds a limit config or replaces the one sharing its key.
// PUT /admin/rate-limits - Returns 200 OK with the stored config.
func (h *LimitHandler) UpsertHandler(c *gin.Context) {
	var req dto.UpsertLimitRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	config := &ratelimitDomain.LimitConfig{
		ClientID:          req.ClientID,
		Operation:         req.Operation,
		RequestsPerMinute: req.RequestsPerMinute,
		Burst:             req.Burst,
	}
	if err := h.rateLimiter.SetLimit(c.Request.Context(), config); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLimitToResponse(config))
}

// DeleteHandler removes a limit config by its (client id, operation) key.
// DELETE /admin/rate-limits?client_id=...&operation=... - Returns 204.
func (h *LimitHandler) DeleteHandler(c *gin.Context) {
	clientID := c.Query("client_id")
	operation := c.Query("operation")
	if clientID == "" || operation == "" {
		httputil.HandleValidationErrorGin(c,
			customValidation.WrapValidationError(
				fmt.Errorf("client_id and operation query parameters are required"),
			),
			h.logger)
		return
	}

	if err := h.rateLimiter.DeleteLimit(c.Request.Context(), clientID, operation); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler lists limit configs with pagination.
// GET /admin/rate-limits - Returns 200 OK with the config list.
func (h *LimitHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	configs, err := h.rateLimiter.ListLimits(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLimitsToListResponse(configs))
}
