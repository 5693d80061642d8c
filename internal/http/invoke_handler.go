package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	"github.com/allisson/gatekeeper/internal/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
	"github.com/allisson/gatekeeper/internal/metrics"
	"github.com/allisson/gatekeeper/internal/pipeline"
	customValidation "github.com/allisson/gatekeeper/internal/validation"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// InvokeHandler submits calls to the security pipeline. This is the endpoint
// the protected-operation layer fronts with.
type InvokeHandler struct {
	pipeline        *pipeline.SecurityPipeline
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
}

// NewInvokeHandler creates a new invoke handler.
func NewInvokeHandler(
	securityPipeline *pipeline.SecurityPipeline,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *InvokeHandler {
	return &InvokeHandler{
		pipeline:        securityPipeline,
		businessMetrics: businessMetrics,
		logger:          logger,
	}
}

// Handler runs one request through the pipeline.
// POST /v1/invoke - Credentials travel in headers, the call description in
// the body. Fresh sessions are surfaced through response headers.
func (h *InvokeHandler) Handler(c *gin.Context) {
	var req dto.InvokeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()
	result := h.pipeline.Execute(ctx, pipeline.Request{
		Credentials: CredentialsFromRequest(c),
		Operation:   req.Operation,
		Resource:    req.Resource,
		Action:      req.Action,
		Context:     req.Context,
		Metadata:    req.Metadata,
	})

	if result.Err != nil {
		h.businessMetrics.RecordRejection(ctx, rejectionStage(result.Err))
		h.businessMetrics.RecordOperation(ctx, "pipeline", req.Operation, auditDomain.StatusError)
		httputil.HandleErrorWithRetryGin(c, result.Err, result.RetryAfter, h.logger)
		return
	}

	h.businessMetrics.RecordOperation(ctx, "pipeline", req.Operation, auditDomain.StatusSuccess)

	if result.Auth.FreshSession {
		c.Header(HeaderSessionID, result.Auth.SessionID)
		c.Header(HeaderSessionToken, result.Auth.Token)
	}

	c.JSON(http.StatusOK, dto.InvokeResponse{
		ClientID:  result.Auth.ClientID,
		SessionID: result.Auth.SessionID,
		ExpiresAt: result.Auth.ExpiresAt,
		Result:    result.Response,
	})
}

// rejectionStage labels a pipeline error with the stage that produced it.
func rejectionStage(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrRateLimited):
		return "rate-limit"
	case apperrors.Is(err, apperrors.ErrForbidden):
		return "authorize"
	case apperrors.Is(err, apperrors.ErrUnauthorized), apperrors.Is(err, apperrors.ErrLocked):
		return "authenticate"
	default:
		return "invoke"
	}
}
