package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/service"
	"github.com/smaraba1/payroll-processing/pkg/response"
)

// ClientHandler client company endpoints
type ClientHandler struct {
	clientSvc service.ClientService
}

// NewClientHandler creates a ClientHandler.
func NewClientHandler(clientSvc service.ClientService) *ClientHandler {
	return &ClientHandler{clientSvc: clientSvc}
}

// ListClients GET /api/v1/clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.clientSvc.List(c.Request.Context(), &page)
	if err != nil {
		h.handleClientError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// SearchClients GET /api/v1/clients/search?name=
func (h *ClientHandler) SearchClients(c *gin.Context) {
	var req dto.ClientSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.clientSvc.Search(c.Request.Context(), req.Name)
	if err != nil {
		h.handleClientError(c, err)
		return
	}
	response.List(c, list)
}

// GetClient GET /api/v1/clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleClientError(c, err)
		return
	}
	response.OK(c, client)
}

// CreateClient POST /api/v1/clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	client, err := h.clientSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleClientError(c, err)
		return
	}
	response.Created(c, client)
}

// UpdateClient PUT /api/v1/clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	client, err := h.clientSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleClientError(c, err)
		return
	}
	response.OK(c, client)
}

// DeleteClient DELETE /api/v1/clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.clientSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleClientError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ClientHandler) handleClientError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		response.NotFound(c, 13001, err.Error())
	default:
		response.InternalError(c)
	}
}
