// Package cli implements the emsctl command tree. Commands resolve the saved
// session, check its capabilities and call the backend through API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smaraba1/payroll-processing/config"
	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/client"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/editor"
	"github.com/smaraba1/payroll-processing/internal/session"
	"github.com/smaraba1/payroll-processing/pkg/logger"
)

var (
	ErrNotLoggedIn = errors.New("not logged in, run 'emsctl login' first")
	ErrExpired     = errors.New("session expired, run 'emsctl login' again")
	ErrNotAllowed  = errors.New("your role does not allow this")
)

// API is the backend surface the commands use. *client.Client satisfies it.
type API interface {
	editor.Backend
	session.Authenticator

	Me(ctx context.Context) (*dto.UserResponse, error)
	ListTimesheets(ctx context.Context, userID string, page, pageSize int) (*dto.Page[dto.TimesheetResponse], error)
	SubmitTimesheet(ctx context.Context, id string) (*dto.TimesheetResponse, error)
	ApproveTimesheet(ctx context.Context, id string, approved bool, comments string) (*dto.TimesheetResponse, error)
	DeleteTimesheet(ctx context.Context, id string) error
	PendingForManager(ctx context.Context, managerID string) ([]dto.TimesheetResponse, error)
	ListProjects(ctx context.Context, page, pageSize int) (*dto.Page[dto.ProjectResponse], error)
	ListClients(ctx context.Context, page, pageSize int) (*dto.Page[dto.ClientResponse], error)
	SearchClients(ctx context.Context, name string) ([]dto.ClientResponse, error)
	ListInvoices(ctx context.Context, f client.InvoiceFilter) (*dto.Page[dto.InvoiceResponse], error)
	GenerateInvoice(ctx context.Context, req dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error)
	RecordPayment(ctx context.Context, invoiceID string, req dto.RecordPaymentRequest) (*dto.InvoiceResponse, error)
	DownloadTimesheet(ctx context.Context, id, format string) (*client.Download, error)
}

// App holds what every command needs. Fields left nil are filled from the
// configuration file before the first command runs.
type App struct {
	// Connect returns an API authenticated as token; "" means anonymous.
	Connect  func(token string) API
	Sessions *session.Manager
	Logger   *zap.Logger
	Now      func() time.Time
}

func (a *App) ready() bool { return a.Connect != nil && a.Sessions != nil }

// init wires the App from configuration.
func (a *App) init(configPath, logLevel string) error {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return err
	}

	if a.Logger == nil {
		a.Logger, err = logger.NewCLILogger(logLevel)
		if err != nil {
			return err
		}
	}
	if a.Now == nil {
		a.Now = time.Now
	}

	dir := cfg.Client.DataDir
	if dir == "" {
		if dir, err = session.DefaultDir(); err != nil {
			return fmt.Errorf("locate data directory: %w", err)
		}
	}

	base := client.New(client.Config{BaseURL: cfg.Client.BaseURL, Timeout: cfg.Client.Timeout})
	a.Connect = func(token string) API {
		if token == "" {
			return base
		}
		return base.WithToken(token)
	}
	a.Sessions = session.NewManager(base, session.NewStore(dir), a.Logger)

	a.Logger.Debug("emsctl configured",
		zap.String("base_url", cfg.Client.BaseURL),
		zap.String("data_dir", dir),
	)
	return nil
}

// current returns the live session or a user-facing error.
func (a *App) current() (*session.Session, error) {
	sess, err := a.Sessions.Current()
	switch {
	case errors.Is(err, session.ErrNoSession):
		return nil, ErrNotLoggedIn
	case errors.Is(err, session.ErrExpired):
		return nil, ErrExpired
	case err != nil:
		return nil, err
	}
	return sess, nil
}

// authorize resolves the session, checks it grants c and returns an API
// bound to its token.
func (a *App) authorize(c access.Capability) (*session.Session, API, error) {
	sess, err := a.current()
	if err != nil {
		return nil, nil, err
	}
	if !sess.Can(c) {
		return nil, nil, fmt.Errorf("%w (needs %s)", ErrNotAllowed, c)
	}
	return sess, a.Connect(sess.Token), nil
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
