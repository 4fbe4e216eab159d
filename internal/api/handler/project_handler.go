package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/service"
	"github.com/smaraba1/payroll-processing/pkg/response"
)

// ProjectHandler project and assignment endpoints
type ProjectHandler struct {
	projectSvc service.ProjectService
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(projectSvc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc}
}

// ListProjects GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.projectSvc.List(c.Request.Context(), &page)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// GetProject GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.OK(c, project)
}

// ListByClient GET /api/v1/projects/client/:clientId
func (h *ProjectHandler) ListByClient(c *gin.Context) {
	list, err := h.projectSvc.ListByClient(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.List(c, list)
}

// ActiveForUser GET /api/v1/projects/user/:userId
// Employees may only ask for themselves.
func (h *ProjectHandler) ActiveForUser(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	userID := c.Param("userId")
	if userID != caller.UserID && !caller.Can(access.ViewUsers) {
		response.Forbidden(c, 10003, "You can only list your own projects")
		return
	}

	list, err := h.projectSvc.ActiveForUser(c.Request.Context(), userID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.List(c, list)
}

// CreateProject POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	project, err := h.projectSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.Created(c, project)
}

// UpdateProject PUT /api/v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	project, err := h.projectSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.OK(c, project)
}

// DeleteProject DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.projectSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.OK(c, nil)
}

// Assign POST /api/v1/projects/assignments
func (h *ProjectHandler) Assign(c *gin.Context) {
	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.projectSvc.Assign(c.Request.Context(), &req, callerID); err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.Created(c, nil)
}

// Unassign DELETE /api/v1/projects/assignments?user_id=&project_id=
func (h *ProjectHandler) Unassign(c *gin.Context) {
	var req dto.AssignmentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.projectSvc.Unassign(c.Request.Context(), &req); err != nil {
		h.handleProjectError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ProjectHandler) handleProjectError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrNegativeRate):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrAssignmentExists):
		response.Conflict(c, 14003, err.Error())
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 14004, err.Error())
	case errors.Is(err, service.ErrAssigneeNotFound):
		response.BadRequest(c, 14005, err.Error())
	case errors.Is(err, service.ErrClientNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, err.Error())
	default:
		response.InternalError(c)
	}
}
