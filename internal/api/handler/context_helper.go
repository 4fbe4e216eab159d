package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/service"
	"github.com/smaraba1/payroll-processing/pkg/response"
)

// Context keys set by middleware.JWTAuth.
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxEmail    = "email"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// MustGetUserID extracts user_id from the gin context. On failure it writes a
// 401 and returns false; callers should return immediately.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "Not authenticated")
		return "", false
	}
	return s, true
}

// MustGetRole extracts the caller's role.
func MustGetRole(c *gin.Context) (access.Role, bool) {
	r := access.Role(c.GetString(CtxRole))
	if !r.Valid() {
		response.Unauthorized(c, 10002, "Not authenticated")
		return "", false
	}
	return r, true
}

// MustGetCaller combines MustGetUserID and MustGetRole.
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	id, ok := MustGetUserID(c)
	if !ok {
		return service.Caller{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Caller{}, false
	}
	return service.Caller{UserID: id, Role: role}, true
}

// tokenInfo returns the jti and expiry of the current access token.
func tokenInfo(c *gin.Context) (string, time.Time) {
	return c.GetString(CtxTokenJTI), c.GetTime(CtxTokenExp)
}
