package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	return q
}

func seg(s string) string { return url.PathEscape(s) }

// ── Auth ──

func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	body := dto.LoginRequest{Email: email, Password: password}
	if err := c.call(ctx, "login", http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the client's token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Revoke logs out the given token, whatever token the client carries.
func (c *Client) Revoke(ctx context.Context, token string) error {
	return c.WithToken(token).Logout(ctx)
}

func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.call(ctx, "me", http.MethodGet, "/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Timesheets ──

func (c *Client) GetTimesheet(ctx context.Context, id string) (*dto.TimesheetResponse, error) {
	var out dto.TimesheetResponse
	if err := c.call(ctx, "get timesheet", http.MethodGet, "/timesheets/"+seg(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTimesheets(ctx context.Context, userID string, page, pageSize int) (*dto.Page[dto.TimesheetResponse], error) {
	var out dto.Page[dto.TimesheetResponse]
	err := c.call(ctx, "list timesheets", http.MethodGet, "/timesheets/user/"+seg(userID), pageQuery(page, pageSize), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveTimesheet creates or updates the user's sheet for sub.AnchorDate.
func (c *Client) SaveTimesheet(ctx context.Context, userID string, sub weeksheet.Submission) (*dto.TimesheetResponse, error) {
	var out dto.TimesheetResponse
	err := c.call(ctx, "save timesheet", http.MethodPost, "/timesheets/user/"+seg(userID), nil, SaveRequest(sub), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveRequest maps a submission onto the wire request.
func SaveRequest(sub weeksheet.Submission) dto.SaveTimesheetRequest {
	req := dto.SaveTimesheetRequest{
		WeekStartDate: sub.AnchorDate,
		Entries:       make([]dto.TimeEntryRequest, 0, len(sub.Entries)),
	}
	for _, e := range sub.Entries {
		req.Entries = append(req.Entries, dto.TimeEntryRequest{
			ID:        e.ID,
			ProjectID: e.ProjectID,
			EntryDate: e.EntryDate,
			Hours:     e.Hours,
			TaskType:  string(e.TaskType),
			Notes:     e.Notes,
		})
	}
	return req
}

func (c *Client) SubmitTimesheet(ctx context.Context, id string) (*dto.TimesheetResponse, error) {
	var out dto.TimesheetResponse
	if err := c.call(ctx, "submit timesheet", http.MethodPost, "/timesheets/"+seg(id)+"/submit", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveTimesheet approves or, with approved false, rejects a submitted sheet.
func (c *Client) ApproveTimesheet(ctx context.Context, id string, approved bool, comments string) (*dto.TimesheetResponse, error) {
	var out dto.TimesheetResponse
	body := dto.ApprovalRequest{Approved: &approved, Comments: comments}
	if err := c.call(ctx, "review timesheet", http.MethodPost, "/timesheets/"+seg(id)+"/approval", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTimesheet(ctx context.Context, id string) error {
	return c.call(ctx, "delete timesheet", http.MethodDelete, "/timesheets/"+seg(id), nil, nil, nil)
}

func (c *Client) PendingForManager(ctx context.Context, managerID string) ([]dto.TimesheetResponse, error) {
	var out listData[dto.TimesheetResponse]
	if err := c.call(ctx, "pending timesheets", http.MethodGet, "/timesheets/pending/manager/"+seg(managerID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// ── Projects and clients ──

// ActiveProjects lists the projects userID may log time against. An empty
// list is a valid answer.
func (c *Client) ActiveProjects(ctx context.Context, userID string) ([]dto.ProjectResponse, error) {
	var out listData[dto.ProjectResponse]
	if err := c.call(ctx, "active projects", http.MethodGet, "/projects/user/"+seg(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

func (c *Client) ListProjects(ctx context.Context, page, pageSize int) (*dto.Page[dto.ProjectResponse], error) {
	var out dto.Page[dto.ProjectResponse]
	if err := c.call(ctx, "list projects", http.MethodGet, "/projects", pageQuery(page, pageSize), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListClients(ctx context.Context, page, pageSize int) (*dto.Page[dto.ClientResponse], error) {
	var out dto.Page[dto.ClientResponse]
	if err := c.call(ctx, "list clients", http.MethodGet, "/clients", pageQuery(page, pageSize), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchClients(ctx context.Context, name string) ([]dto.ClientResponse, error) {
	var out listData[dto.ClientResponse]
	q := url.Values{"name": {name}}
	if err := c.call(ctx, "search clients", http.MethodGet, "/clients/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// ── Invoices ──

// InvoiceFilter narrows ListInvoices; zero fields are ignored.
type InvoiceFilter struct {
	ClientID  string
	Status    string
	StartDate string
	EndDate   string
	Page      int
	PageSize  int
}

func (f InvoiceFilter) query() url.Values {
	q := pageQuery(f.Page, f.PageSize)
	for k, v := range map[string]string{
		"client_id":  f.ClientID,
		"status":     f.Status,
		"start_date": f.StartDate,
		"end_date":   f.EndDate,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (c *Client) ListInvoices(ctx context.Context, f InvoiceFilter) (*dto.Page[dto.InvoiceResponse], error) {
	var out dto.Page[dto.InvoiceResponse]
	if err := c.call(ctx, "list invoices", http.MethodGet, "/invoices/search", f.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateInvoice(ctx context.Context, req dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	var out dto.InvoiceResponse
	if err := c.call(ctx, "generate invoice", http.MethodPost, "/invoices/generate", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecordPayment(ctx context.Context, invoiceID string, req dto.RecordPaymentRequest) (*dto.InvoiceResponse, error) {
	var out dto.InvoiceResponse
	if err := c.call(ctx, "record payment", http.MethodPost, "/invoices/"+seg(invoiceID)+"/payments", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Export ──

// Download is a file returned by an export endpoint.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DownloadTimesheet fetches a timesheet export; format is "xlsx" or "ics".
func (c *Client) DownloadTimesheet(ctx context.Context, id, format string) (_ *Download, err error) {
	const op = "download timesheet"
	defer func(start time.Time) { observeCall(op, start, err) }(time.Now())

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("format", format).
		Get("/export/timesheets/" + seg(id))
	if err != nil {
		return nil, &RemoteError{Op: op, Message: "backend unreachable", Err: err}
	}
	if resp.IsError() {
		var env envelope
		decodeErr := json.Unmarshal(resp.Body(), &env)
		return nil, remoteFailure(op, resp, env, decodeErr)
	}

	return &Download{
		Filename:    filenameFrom(resp.Header().Get("Content-Disposition"), id+"."+format),
		ContentType: resp.Header().Get("Content-Type"),
		Data:        resp.Body(),
	}, nil
}

// filenameFrom reads the RFC 5987 filename from a Content-Disposition value.
func filenameFrom(disposition, fallback string) string {
	const marker = "filename*=UTF-8''"
	i := strings.Index(disposition, marker)
	if i < 0 {
		return fallback
	}
	name, err := url.PathUnescape(disposition[i+len(marker):])
	if err != nil || name == "" {
		return fallback
	}
	return path.Base(name)
}
