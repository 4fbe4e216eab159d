// Package response writes the JSON envelope shared by every endpoint:
// {code, message, data, details}. Code 0 is success.
package response

import (
	"net/http"
	"net/url"
	"reflect"

	"github.com/gin-gonic/gin"
)

// CodeInternal is the envelope code for unexpected failures.
const CodeInternal = 50000

// Response is the envelope.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

// Pagination page metadata
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData paged list payload
type PageData struct {
	List       any        `json:"list"`
	Pagination Pagination `json:"pagination"`
}

// ListData unpaged list payload
type ListData struct {
	List any `json:"list"`
}

func write(c *gin.Context, status int, body Response) {
	c.JSON(status, body)
}

func success(c *gin.Context, status int, data any) {
	write(c, status, Response{Code: 0, Message: "success", Data: data})
}

// emptyIfNil keeps lists serialized as [] rather than null.
func emptyIfNil(list any) any {
	v := reflect.ValueOf(list)
	if list == nil || (v.Kind() == reflect.Slice && v.IsNil()) {
		return []any{}
	}
	return list
}

// ── Success ──

// OK 200
func OK(c *gin.Context, data any) { success(c, http.StatusOK, data) }

// Created 201
func Created(c *gin.Context, data any) { success(c, http.StatusCreated, data) }

// List 200 with {"list": [...]}.
func List(c *gin.Context, list any) {
	success(c, http.StatusOK, ListData{List: emptyIfNil(list)})
}

// OKPage 200 with a page of list and its metadata.
func OKPage(c *gin.Context, list any, total int64, page, pageSize int) {
	success(c, http.StatusOK, PageData{
		List: emptyIfNil(list),
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: TotalPages(total, pageSize),
		},
	})
}

// TotalPages rounds up; a non-positive page size yields 0.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Attachment 200 with a file download. The name is sent RFC 5987 encoded so
// non-ASCII client and employee names survive.
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

// ── Errors ──

// Error writes an error envelope.
func Error(c *gin.Context, status, code int, message string) {
	write(c, status, Response{Code: code, Message: message})
}

// ErrorWithDetails writes an error envelope with details.
func ErrorWithDetails(c *gin.Context, status, code int, message, details string) {
	write(c, status, Response{Code: code, Message: message, Details: details})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500. The cause is logged by the service, never sent.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
}
