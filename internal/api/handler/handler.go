package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smaraba1/payroll-processing/config"
	"github.com/smaraba1/payroll-processing/internal/service"
	pkgerrors "github.com/smaraba1/payroll-processing/pkg/errors"
	"github.com/smaraba1/payroll-processing/pkg/response"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Client    *ClientHandler
	Project   *ProjectHandler
	Timesheet *TimesheetHandler
	Invoice   *InvoiceHandler
	Export    *ExportHandler
}

// NewHandler wires handlers to their services.
func NewHandler(svc *service.Service, cfg *config.Config) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		User:      NewUserHandler(svc.User, cfg.Server.UploadLimit),
		Client:    NewClientHandler(svc.Client),
		Project:   NewProjectHandler(svc.Project),
		Timesheet: NewTimesheetHandler(svc.Timesheet),
		Invoice:   NewInvoiceHandler(svc.Invoice),
		Export:    NewExportHandler(svc.Export),
	}
}

// handleCommonError writes responses for errors shared by every module and
// reports whether it did.
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "The record was changed by someone else, reload and try again")
	case errors.Is(err, pkgerrors.ErrDuplicate):
		response.Conflict(c, 10007, "The record already exists")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, err.Error())
	default:
		return false
	}
	return true
}

func bindFailed(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "Invalid request parameters", err.Error())
}
