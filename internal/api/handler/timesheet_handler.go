package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/service"
	"github.com/smaraba1/payroll-processing/pkg/response"
)

// TimesheetHandler weekly timesheet endpoints
type TimesheetHandler struct {
	timesheetSvc service.TimesheetService
}

// NewTimesheetHandler creates a TimesheetHandler.
func NewTimesheetHandler(timesheetSvc service.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheetSvc: timesheetSvc}
}

// ListByUser GET /api/v1/timesheets/user/:userId
func (h *TimesheetHandler) ListByUser(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindFailed(c, err)
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, total, err := h.timesheetSvc.ListByUser(c.Request.Context(), c.Param("userId"), &page, caller)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// GetTimesheet GET /api/v1/timesheets/:id
func (h *TimesheetHandler) GetTimesheet(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ts, err := h.timesheetSvc.GetByID(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}
	response.OK(c, ts)
}

// SaveTimesheet POST /api/v1/timesheets/user/:userId
// Creates the week or replaces its entries.
func (h *TimesheetHandler) SaveTimesheet(c *gin.Context) {
	var req dto.SaveTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ts, err := h.timesheetSvc.Save(c.Request.Context(), c.Param("userId"), &req, caller)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}
	response.OK(c, ts)
}

// SubmitTimesheet POST /api/v1/timesheets/:id/submit
func (h *TimesheetHandler) SubmitTimesheet(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ts, err := h.timesheetSvc.Submit(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}
	response.OK(c, ts)
}

// ReviewTimesheet POST /api/v1/timesheets/:id/approval
func (h *TimesheetHandler) ReviewTimesheet(c *gin.Context) {
	var req dto.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ts, err := h.timesheetSvc.Approve(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}
	response.OK(c, ts)
}

// DeleteTimesheet DELETE /api/v1/timesheets/:id
func (h *TimesheetHandler) DeleteTimesheet(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.timesheetSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleTimesheetError(c, err)
		return
	}
	response.OK(c, nil)
}

// PendingForManager GET /api/v1/timesheets/pending/manager/:managerId
func (h *TimesheetHandler) PendingForManager(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.timesheetSvc.PendingForManager(c.Request.Context(), c.Param("managerId"), caller)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}
	response.List(c, list)
}

func (h *TimesheetHandler) handleTimesheetError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrTimesheetNotFound):
		response.NotFound(c, 15001, err.Error())
	case errors.Is(err, service.ErrTimesheetForbidden):
		response.Forbidden(c, 15002, err.Error())
	case errors.Is(err, service.ErrWeekStartNotSunday):
		response.BadRequest(c, 15003, err.Error())
	case errors.Is(err, service.ErrEntryOutsideWeek):
		response.BadRequest(c, 15004, err.Error())
	case errors.Is(err, service.ErrEntryProjectRequired):
		response.BadRequest(c, 15005, err.Error())
	case errors.Is(err, service.ErrEntryInvalidTaskType):
		response.BadRequest(c, 15006, err.Error())
	case errors.Is(err, service.ErrEntryInvalidHours):
		response.BadRequest(c, 15007, err.Error())
	case errors.Is(err, service.ErrEntryProjectNotFound):
		response.BadRequest(c, 15008, err.Error())
	case errors.Is(err, service.ErrEntryDuplicateID):
		response.BadRequest(c, 15014, err.Error())
	case errors.Is(err, service.ErrTimesheetNotModifiable):
		response.BadRequest(c, 15009, err.Error())
	case errors.Is(err, service.ErrTimesheetEmpty):
		response.BadRequest(c, 15010, err.Error())
	case errors.Is(err, service.ErrTimesheetNotSubmitted):
		response.BadRequest(c, 15011, err.Error())
	case errors.Is(err, service.ErrRejectionCommentRequired):
		response.BadRequest(c, 15012, err.Error())
	case errors.Is(err, service.ErrTimesheetNotDraft):
		response.BadRequest(c, 15013, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, err.Error())
	default:
		response.InternalError(c)
	}
}
