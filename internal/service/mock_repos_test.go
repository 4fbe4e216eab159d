package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
	pkgerrors "github.com/smaraba1/payroll-processing/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		if u.ManagerID != nil {
			u.Manager = m.users[*u.ManagerID]
		}
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filters != nil && filters.Role != "" && string(u.Role) != filters.Role {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockUserRepo) ListDirectReports(_ context.Context, managerID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.ManagerID != nil && *u.ManagerID == managerID && u.IsActive {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListByEmails(_ context.Context, emails []string) ([]model.User, error) {
	var result []model.User
	for _, e := range emails {
		for _, u := range m.users {
			if strings.EqualFold(u.Email, e) {
				result = append(result, *u)
			}
		}
	}
	return result, nil
}

// ── Mock ClientRepository ──

type mockClientRepo struct {
	clients map[string]*model.Client
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: make(map[string]*model.Client)}
}

func (m *mockClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ClientID == "" {
		c.ClientID = "client-" + c.Name
	}
	m.clients[c.ClientID] = c
	return nil
}

func (m *mockClientRepo) GetByID(_ context.Context, id string) (*model.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClientRepo) Update(_ context.Context, c *model.Client) error {
	m.clients[c.ClientID] = c
	return nil
}

func (m *mockClientRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.clients, id)
	return nil
}

func (m *mockClientRepo) List(_ context.Context, _, _ int) ([]model.Client, int64, error) {
	var result []model.Client
	for _, c := range m.clients {
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockClientRepo) SearchByName(_ context.Context, name string) ([]model.Client, error) {
	var result []model.Client
	for _, c := range m.clients {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			result = append(result, *c)
		}
	}
	return result, nil
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	projects    map[string]*model.Project
	assignments *mockAssignmentRepo
	clients     *mockClientRepo
}

func newMockProjectRepo(assignments *mockAssignmentRepo, clients *mockClientRepo) *mockProjectRepo {
	return &mockProjectRepo{
		projects:    make(map[string]*model.Project),
		assignments: assignments,
		clients:     clients,
	}
}

func (m *mockProjectRepo) hydrate(p *model.Project) *model.Project {
	out := *p
	out.Assignments = nil
	for _, a := range m.assignments.list {
		if a.ProjectID == p.ProjectID {
			out.Assignments = append(out.Assignments, a)
		}
	}
	if c, ok := m.clients.clients[p.ClientID]; ok {
		out.Client = c
	}
	return &out
}

func (m *mockProjectRepo) Create(_ context.Context, p *model.Project) error {
	if p.ProjectID == "" {
		p.ProjectID = "project-" + p.Name
	}
	m.projects[p.ProjectID] = p
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		return m.hydrate(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) Update(_ context.Context, p *model.Project) error {
	m.projects[p.ProjectID] = p
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepo) sorted(keep func(*model.Project) bool) []model.Project {
	var result []model.Project
	for _, p := range m.projects {
		if keep(p) {
			result = append(result, *m.hydrate(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *mockProjectRepo) List(_ context.Context, _, _ int) ([]model.Project, int64, error) {
	result := m.sorted(func(*model.Project) bool { return true })
	return result, int64(len(result)), nil
}

func (m *mockProjectRepo) ListByClient(_ context.Context, clientID string) ([]model.Project, error) {
	return m.sorted(func(p *model.Project) bool { return p.ClientID == clientID }), nil
}

func (m *mockProjectRepo) ListActive(_ context.Context) ([]model.Project, error) {
	return m.sorted(func(p *model.Project) bool { return p.Status == model.ProjectActive }), nil
}

func (m *mockProjectRepo) ListActiveForUser(ctx context.Context, userID string) ([]model.Project, error) {
	return m.sorted(func(p *model.Project) bool {
		if p.Status != model.ProjectActive {
			return false
		}
		ok, _ := m.assignments.Exists(ctx, userID, p.ProjectID)
		return ok
	}), nil
}

func (m *mockProjectRepo) CountByIDs(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := m.projects[id]; ok {
			n++
		}
	}
	return n, nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	list []model.ProjectAssignment
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.ProjectAssignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = a.ProjectID + "/" + a.UserID
	}
	m.list = append(m.list, *a)
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, userID, projectID string) error {
	for i, a := range m.list {
		if a.UserID == userID && a.ProjectID == projectID {
			m.list = append(m.list[:i], m.list[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) Exists(_ context.Context, userID, projectID string) (bool, error) {
	for _, a := range m.list {
		if a.UserID == userID && a.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) ListByProject(_ context.Context, projectID string) ([]model.ProjectAssignment, error) {
	var result []model.ProjectAssignment
	for _, a := range m.list {
		if a.ProjectID == projectID {
			result = append(result, a)
		}
	}
	return result, nil
}

// ── Mock TimesheetRepository ──

type mockTimesheetRepo struct {
	sheets   map[string]*model.Timesheet
	entries  map[string][]model.TimeEntry // key: timesheet id
	projects *mockProjectRepo
	users    *mockUserRepo
	seq      int
}

func newMockTimesheetRepo(projects *mockProjectRepo, users *mockUserRepo) *mockTimesheetRepo {
	return &mockTimesheetRepo{
		sheets:   make(map[string]*model.Timesheet),
		entries:  make(map[string][]model.TimeEntry),
		projects: projects,
		users:    users,
	}
}

func (m *mockTimesheetRepo) hydrate(ts *model.Timesheet) *model.Timesheet {
	out := *ts
	out.Entries = nil
	for _, e := range m.entries[ts.TimesheetID] {
		if e.ProjectID != nil {
			if p, ok := m.projects.projects[*e.ProjectID]; ok {
				e.Project = m.projects.hydrate(p)
			}
		}
		out.Entries = append(out.Entries, e)
	}
	out.User = m.users.users[ts.UserID]
	return &out
}

func (m *mockTimesheetRepo) Create(_ context.Context, ts *model.Timesheet) error {
	if ts.TimesheetID == "" {
		m.seq++
		ts.TimesheetID = fmt.Sprintf("ts-%d", m.seq)
	}
	ts.Version = 1
	stored := *ts
	stored.Entries = nil
	m.sheets[ts.TimesheetID] = &stored
	return nil
}

func (m *mockTimesheetRepo) GetByID(_ context.Context, id string) (*model.Timesheet, error) {
	if ts, ok := m.sheets[id]; ok {
		return m.hydrate(ts), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) GetByUserAndWeek(_ context.Context, userID string, weekStart time.Time) (*model.Timesheet, error) {
	for _, ts := range m.sheets {
		if ts.UserID == userID && ts.WeekStartDate.Equal(weekStart) {
			return m.hydrate(ts), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]model.Timesheet, int64, error) {
	var result []model.Timesheet
	for _, ts := range m.sheets {
		if ts.UserID == userID {
			result = append(result, *m.hydrate(ts))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WeekStartDate.After(result[j].WeekStartDate) })
	return result, int64(len(result)), nil
}

func (m *mockTimesheetRepo) ListPendingForManager(_ context.Context, managerID string) ([]model.Timesheet, error) {
	var result []model.Timesheet
	for _, ts := range m.sheets {
		u := m.users.users[ts.UserID]
		if ts.Status == model.TimesheetSubmitted && u != nil && u.ManagerID != nil && *u.ManagerID == managerID {
			result = append(result, *m.hydrate(ts))
		}
	}
	return result, nil
}

func (m *mockTimesheetRepo) Update(_ context.Context, ts *model.Timesheet) error {
	stored, ok := m.sheets[ts.TimesheetID]
	if !ok || stored.Version != ts.Version {
		return pkgerrors.ErrOptimisticLock
	}
	ts.Version++
	cp := *ts
	cp.Entries = nil
	m.sheets[ts.TimesheetID] = &cp
	return nil
}

func (m *mockTimesheetRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.sheets, id)
	delete(m.entries, id)
	return nil
}

// ── Mock TimeEntryRepository ──

type mockTimeEntryRepo struct {
	sheets   *mockTimesheetRepo
	billable []repository.BillableHours
	seq      int
}

func (m *mockTimeEntryRepo) ReplaceForTimesheet(_ context.Context, timesheetID string, entries []model.TimeEntry) error {
	stored := make([]model.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.EntryID == "" {
			m.seq++
			e.EntryID = fmt.Sprintf("entry-%d", m.seq)
		}
		e.TimesheetID = timesheetID
		stored = append(stored, e)
	}
	m.sheets.entries[timesheetID] = stored
	return nil
}

func (m *mockTimeEntryRepo) SumApprovedBillable(_ context.Context, projectIDs []string, _, _ time.Time) ([]repository.BillableHours, error) {
	want := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		want[id] = true
	}
	var result []repository.BillableHours
	for _, b := range m.billable {
		if want[b.ProjectID] {
			result = append(result, b)
		}
	}
	return result, nil
}

// ── Mock InvoiceRepository ──

type mockInvoiceRepo struct {
	invoices map[string]*model.Invoice
	seq      int
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{invoices: make(map[string]*model.Invoice)}
}

func (m *mockInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	if inv.InvoiceID == "" {
		m.seq++
		inv.InvoiceID = fmt.Sprintf("inv-%d", m.seq)
	}
	inv.Version = 1
	cp := *inv
	m.invoices[inv.InvoiceID] = &cp
	return nil
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id string) (*model.Invoice, error) {
	if inv, ok := m.invoices[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	stored, ok := m.invoices[inv.InvoiceID]
	if !ok || stored.Version != inv.Version {
		return pkgerrors.ErrOptimisticLock
	}
	inv.Version++
	cp := *inv
	m.invoices[inv.InvoiceID] = &cp
	return nil
}

func (m *mockInvoiceRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.invoices, id)
	return nil
}

func (m *mockInvoiceRepo) Search(_ context.Context, filters *repository.InvoiceSearchFilters, _, _ int) ([]model.Invoice, int64, error) {
	var result []model.Invoice
	for _, inv := range m.invoices {
		if filters.ClientID != "" && inv.ClientID != filters.ClientID {
			continue
		}
		if filters.Status != "" && inv.Status != filters.Status {
			continue
		}
		if filters.StartDate != nil && inv.IssueDate.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && inv.IssueDate.After(*filters.EndDate) {
			continue
		}
		result = append(result, *inv)
	}
	return result, int64(len(result)), nil
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct {
	payments []model.Payment
}

func (m *mockPaymentRepo) Create(_ context.Context, p *model.Payment) error {
	p.PaymentID = fmt.Sprintf("pay-%d", len(m.payments)+1)
	m.payments = append(m.payments, *p)
	return nil
}

// ── Fixture ──

// mockRepos holds every mock so tests can seed and inspect state.
type mockRepos struct {
	users       *mockUserRepo
	clients     *mockClientRepo
	projects    *mockProjectRepo
	assignments *mockAssignmentRepo
	timesheets  *mockTimesheetRepo
	entries     *mockTimeEntryRepo
	invoices    *mockInvoiceRepo
	payments    *mockPaymentRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:       newMockUserRepo(),
		clients:     newMockClientRepo(),
		assignments: newMockAssignmentRepo(),
		invoices:    newMockInvoiceRepo(),
		payments:    &mockPaymentRepo{},
	}
	m.projects = newMockProjectRepo(m.assignments, m.clients)
	m.timesheets = newMockTimesheetRepo(m.projects, m.users)
	m.entries = &mockTimeEntryRepo{sheets: m.timesheets}

	repo := &repository.Repository{
		User:       m.users,
		Client:     m.clients,
		Project:    m.projects,
		Assignment: m.assignments,
		Timesheet:  m.timesheets,
		TimeEntry:  m.entries,
		Invoice:    m.invoices,
		Payment:    m.payments,
	}
	return repo, m
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
