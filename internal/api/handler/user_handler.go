package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/service"
	"github.com/smaraba1/payroll-processing/pkg/response"
)

// UserHandler user administration endpoints
type UserHandler struct {
	userSvc     service.UserService
	uploadLimit int64
}

// NewUserHandler creates a UserHandler. uploadLimit caps import files in bytes.
func NewUserHandler(userSvc service.UserService, uploadLimit int64) *UserHandler {
	if uploadLimit <= 0 {
		uploadLimit = 10 << 20
	}
	return &UserHandler{userSvc: userSvc, uploadLimit: uploadLimit}
}

// ListUsers GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// DirectReports GET /api/v1/users/:id/direct-reports
func (h *UserHandler) DirectReports(c *gin.Context) {
	users, err := h.userSvc.DirectReports(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.List(c, users)
}

// CreateUser POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.CreateUser(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.Created(c, user)
}

// UpdateUser PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// DeleteUser DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// DeactivateUser PATCH /api/v1/users/:id/deactivate
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Deactivate(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// ImportUsers POST /api/v1/users/import (multipart field "file")
func (h *UserHandler) ImportUsers(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "Upload a spreadsheet in the file field")
		return
	}
	if fh.Size > h.uploadLimit {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "The file is too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "The upload could not be read")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.uploadLimit+1))
	if err != nil {
		response.BadRequest(c, 10001, "The upload could not be read")
		return
	}

	rows, err := h.userSvc.ParseImportFile(fh.Filename, data)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	result, err := h.userSvc.ImportUsers(c.Request.Context(), rows, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12002, err.Error())
	case errors.Is(err, service.ErrManagerRequired):
		response.BadRequest(c, 12003, err.Error())
	case errors.Is(err, service.ErrManagerNotFound):
		response.BadRequest(c, 12004, err.Error())
	case errors.Is(err, service.ErrUserSelfDelete):
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, service.ErrUserSelfDeactivate):
		response.BadRequest(c, 12006, err.Error())
	case errors.Is(err, service.ErrImportUnsupported),
		errors.Is(err, service.ErrImportUnreadable),
		errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportBadHeader),
		errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 12007, err.Error())
	default:
		response.InternalError(c)
	}
}
