package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	accessUseCase "github.com/allisson/gatekeeper/internal/access/usecase"
	"github.com/allisson/gatekeeper/internal/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// RuleHandler handles the administrative access-rule endpoints.
type RuleHandler struct {
	ruleEngine accessUseCase.RuleEngine
	logger     *slog.Logger
}

// NewRuleHandler creates a new rule handler.
func NewRuleHandler(ruleEngine accessUseCase.RuleEngine, logger *slog.Logger) *RuleHandler {
	return &RuleHandler{
		ruleEngine: ruleEngine,
		logger:     logger,
	}
}

// UpsertHandler adds a rule or replaces the one sharing its key.
// PUT /admin/rules - Returns 200 OK with the stored rule.
func (h *RuleHandler) UpsertHandler(c *gin.Context) {
	var req dto.UpsertRuleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	rule := &accessDomain.Rule{
		ClientID:        req.ClientID,
		ResourcePattern: req.ResourcePattern,
		Actions:         req.Actions,
		Conditions:      req.Conditions,
	}
	if err := h.ruleEngine.Upsert(c.Request.Context(), rule); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRuleToResponse(rule))
}

// DeleteHandler removes a rule by its (client id, resource pattern) key.
// DELETE /admin/rules?client_id=...&resource_pattern=... - Returns 204.
func (h *RuleHandler) DeleteHandler(c *gin.Context) {
	clientID := c.Query("client_id")
	resourcePattern := c.Query("resource_pattern")
	if clientID == "" || resourcePattern == "" {
		httputil.HandleValidationErrorGin(c,
			customValidation.WrapValidationError(
				fmt.Errorf("client_id and resource_pattern query parameters are required"),
			),
			h.logger)
		return
	}

	if err := h.ruleEngine.Delete(c.Request.Context(), clientID, resourcePattern); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler lists rules, optionally narrowed to one client.
// GET /admin/rules[?client_id=...] - Returns 200 OK with the rule list in
// evaluation order.
func (h *RuleHandler) ListHandler(c *gin.Context) {
	if clientID := c.Query("client_id"); clientID != "" {
		rules, err := h.ruleEngine.ListByClient(c.Request.Context(), clientID)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		c.JSON(http.StatusOK, dto.MapRulesToListResponse(rules))
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	rules, err := h.ruleEngine.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRulesToListResponse(rules))
}
