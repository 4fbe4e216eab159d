package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/smaraba1/payroll-processing/internal/service"
	"github.com/smaraba1/payroll-processing/pkg/response"
)

// ExportHandler file download endpoints
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTimesheet GET /api/v1/export/timesheets/:id?format=xlsx|ics
func (h *ExportHandler) ExportTimesheet(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	file, err := h.exportSvc.ExportTimesheet(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", service.FormatXLSX), caller)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, file)
}

// ExportInvoice GET /api/v1/export/invoices/:id
func (h *ExportHandler) ExportInvoice(c *gin.Context) {
	file, err := h.exportSvc.ExportInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, file)
}

func sendFile(c *gin.Context, file *service.ExportFile) {
	response.Attachment(c, file.Filename, file.ContentType, file.Data.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportUnknownFormat):
		response.BadRequest(c, 17001, err.Error())
	case errors.Is(err, service.ErrTimesheetNotFound):
		response.NotFound(c, 15001, err.Error())
	case errors.Is(err, service.ErrTimesheetForbidden):
		response.Forbidden(c, 15002, err.Error())
	case errors.Is(err, service.ErrInvoiceNotFound):
		response.NotFound(c, 16001, err.Error())
	default:
		response.InternalError(c)
	}
}
