package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	"github.com/allisson/gatekeeper/internal/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// ClientHandler handles the administrative client directory endpoints.
type ClientHandler struct {
	clientUseCase authUseCase.ClientUseCase
	logger        *slog.Logger
}

// NewClientHandler creates a new client handler.
func NewClientHandler(clientUseCase authUseCase.ClientUseCase, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		clientUseCase: clientUseCase,
		logger:        logger,
	}
}

// CreateHandler registers a new client.
// POST /admin/clients - Returns 201 Created with the id and plain secret.
func (h *ClientHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateClientRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.clientUseCase.Create(c.Request.Context(), &authDomain.CreateClientInput{
		ID:          req.ID,
		Description: req.Description,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateClientResponse{
		ID:     output.ID,
		Secret: output.PlainSecret,
	})
}

// GetHandler retrieves a client by id.
// GET /admin/clients/:id - Returns 200 OK with client data (no secret).
func (h *ClientHandler) GetHandler(c *gin.Context) {
	client, err := h.clientUseCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClientToResponse(client))
}

// UpdateHandler updates a client's description and status.
// PUT /admin/clients/:id - Returns 200 OK with the updated client.
func (h *ClientHandler) UpdateHandler(c *gin.Context) {
	var req dto.UpdateClientRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	clientID := c.Param("id")
	input := &authDomain.UpdateClientInput{
		Description: req.Description,
		Status:      authDomain.ClientStatus(req.Status),
	}
	if err := h.clientUseCase.Update(c.Request.Context(), clientID, input); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	client, err := h.clientUseCase.Get(c.Request.Context(), clientID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClientToResponse(client))
}

// DisableHandler disables a client. Records are never deleted.
// POST /admin/clients/:id/disable - Returns 204 No Content.
func (h *ClientHandler) DisableHandler(c *gin.Context) {
	if err := h.clientUseCase.Disable(c.Request.Context(), c.Param("id")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RotateSecretHandler replaces a client's credential.
// POST /admin/clients/:id/rotate-secret - Returns 200 OK with the new plain
// secret.
func (h *ClientHandler) RotateSecretHandler(c *gin.Context) {
	output, err := h.clientUseCase.RotateSecret(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.CreateClientResponse{
		ID:     output.ID,
		Secret: output.PlainSecret,
	})
}

// ListHandler lists clients with pagination.
// GET /admin/clients - Returns 200 OK with the client list.
func (h *ClientHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	clients, err := h.clientUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClientsToListResponse(clients))
}
