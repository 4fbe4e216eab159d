package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/service"
	"github.com/smaraba1/payroll-processing/pkg/response"
)

// InvoiceHandler invoicing endpoints
type InvoiceHandler struct {
	invoiceSvc service.InvoiceService
}

// NewInvoiceHandler creates an InvoiceHandler.
func NewInvoiceHandler(invoiceSvc service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceSvc: invoiceSvc}
}

// SearchInvoices GET /api/v1/invoices and GET /api/v1/invoices/search
func (h *InvoiceHandler) SearchInvoices(c *gin.Context) {
	var req dto.InvoiceSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	h.search(c, &req)
}

// ListByClient GET /api/v1/invoices/client/:clientId
func (h *InvoiceHandler) ListByClient(c *gin.Context) {
	var req dto.InvoiceSearchRequest
	if err := c.ShouldBindQuery(&req.PaginationRequest); err != nil {
		bindFailed(c, err)
		return
	}
	req.ClientID = c.Param("clientId")
	h.search(c, &req)
}

func (h *InvoiceHandler) search(c *gin.Context, req *dto.InvoiceSearchRequest) {
	list, total, err := h.invoiceSvc.Search(c.Request.Context(), req)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetInvoice GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}
	response.OK(c, inv)
}

// GenerateInvoice POST /api/v1/invoices/generate
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	var req dto.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	inv, err := h.invoiceSvc.Generate(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}
	response.Created(c, inv)
}

// UpdateStatus PATCH /api/v1/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	inv, err := h.invoiceSvc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}
	response.OK(c, inv)
}

// RecordPayment POST /api/v1/invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	inv, err := h.invoiceSvc.RecordPayment(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}
	response.OK(c, inv)
}

// DeleteInvoice DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.invoiceSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleInvoiceError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *InvoiceHandler) handleInvoiceError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound):
		response.NotFound(c, 16001, err.Error())
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 16002, err.Error())
	case errors.Is(err, service.ErrNoBillableEntries):
		response.BadRequest(c, 16003, err.Error())
	case errors.Is(err, service.ErrInvalidPaymentAmount):
		response.BadRequest(c, 16004, err.Error())
	case errors.Is(err, service.ErrInvoiceCancelled):
		response.BadRequest(c, 16005, err.Error())
	case errors.Is(err, service.ErrInvoiceNotDraft):
		response.BadRequest(c, 16006, err.Error())
	case errors.Is(err, service.ErrClientNotFound):
		response.NotFound(c, 13001, err.Error())
	default:
		response.InternalError(c)
	}
}
