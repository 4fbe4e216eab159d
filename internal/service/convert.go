package service

import (
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

// ── model → dto ──

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:         u.UserID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		Role:       string(u.Role),
		ManagerID:  u.ManagerID,
		IsActive:   u.IsActive,
		Department: u.Department,
		JobTitle:   u.JobTitle,
	}
	if u.Manager != nil {
		resp.ManagerName = u.Manager.FullName()
	}
	if u.HireDate != nil {
		resp.HireDate = weeksheet.FormatDate(*u.HireDate)
	}
	return resp
}

func toClientResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:            c.ClientID,
		Name:          c.Name,
		ContactPerson: c.ContactPerson,
		ContactEmail:  c.ContactEmail,
		Address:       c.Address,
	}
}

func toProjectResponse(p *model.Project) *dto.ProjectResponse {
	resp := &dto.ProjectResponse{
		ID:                  p.ProjectID,
		Name:                p.Name,
		ClientID:            p.ClientID,
		DefaultBillableRate: p.DefaultBillableRate,
		Status:              p.Status,
		EmployeeIDs:         make([]string, 0, len(p.Assignments)),
	}
	if p.Client != nil {
		resp.ClientName = p.Client.Name
	}
	for _, a := range p.Assignments {
		resp.EmployeeIDs = append(resp.EmployeeIDs, a.UserID)
	}
	return resp
}

func toTimesheetResponse(t *model.Timesheet) *dto.TimesheetResponse {
	resp := &dto.TimesheetResponse{
		ID:                t.TimesheetID,
		UserID:            t.UserID,
		WeekStartDate:     weeksheet.FormatDate(t.WeekStartDate),
		Status:            t.Status,
		SubmittedAt:       t.SubmittedAt,
		ApprovedAt:        t.ApprovedAt,
		RejectionComments: t.RejectionComments,
		Version:           t.Version,
		TotalHours:        t.TotalHours(),
		Entries:           make([]dto.TimeEntryResponse, 0, len(t.Entries)),
	}
	if t.User != nil {
		resp.UserName = t.User.FullName()
	}
	for _, e := range t.Entries {
		er := dto.TimeEntryResponse{
			ID:        e.EntryID,
			ProjectID: e.ProjectID,
			EntryDate: weeksheet.FormatDate(e.EntryDate),
			Hours:     e.Hours,
			TaskType:  e.TaskType,
			Notes:     e.Notes,
		}
		if e.Project != nil {
			er.ProjectName = e.Project.Name
			if e.Project.Client != nil {
				er.ClientName = e.Project.Client.Name
			}
		}
		resp.Entries = append(resp.Entries, er)
	}
	return resp
}

func toInvoiceResponse(inv *model.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:          inv.InvoiceID,
		ClientID:    inv.ClientID,
		IssueDate:   weeksheet.FormatDate(inv.IssueDate),
		DueDate:     weeksheet.FormatDate(inv.DueDate),
		PeriodStart: weeksheet.FormatDate(inv.PeriodStart),
		PeriodEnd:   weeksheet.FormatDate(inv.PeriodEnd),
		Status:      inv.Status,
		TotalAmount: inv.TotalAmount,
		AmountPaid:  inv.AmountPaid,
		BalanceDue:  inv.BalanceDue(),
		Version:     inv.Version,
		LineItems:   make([]dto.InvoiceLineItemResponse, 0, len(inv.LineItems)),
		Payments:    make([]dto.PaymentResponse, 0, len(inv.Payments)),
	}
	if inv.Client != nil {
		resp.ClientName = inv.Client.Name
	}
	for _, li := range inv.LineItems {
		resp.LineItems = append(resp.LineItems, dto.InvoiceLineItemResponse{
			ID:          li.LineItemID,
			ProjectID:   li.ProjectID,
			UserID:      li.UserID,
			Description: li.Description,
			Hours:       li.Hours,
			Rate:        li.Rate,
			LineTotal:   li.LineTotal,
		})
	}
	for _, p := range inv.Payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			ID:          p.PaymentID,
			PaymentDate: weeksheet.FormatDate(p.PaymentDate),
			Amount:      p.Amount,
			Method:      p.Method,
			Notes:       p.Notes,
		})
	}
	return resp
}
