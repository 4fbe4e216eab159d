package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/smaraba1/payroll-processing/config"
	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/repository"
	"github.com/smaraba1/payroll-processing/pkg/jwt"
	"github.com/smaraba1/payroll-processing/pkg/redis"
)

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID string
	Role   access.Role
}

// Can reports whether the caller's role grants c.
func (c Caller) Can(cap access.Capability) bool { return c.Role.Can(cap) }

// TokenBlacklist revokes access tokens before they expire.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Service aggregates every business service.
type Service struct {
	Auth      AuthService
	User      UserService
	Client    ClientService
	Project   ProjectService
	Timesheet TimesheetService
	Invoice   InvoiceService
	Export    ExportService
}

// NewService wires the services. rdb may be nil when Redis is unavailable.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var blacklist TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:      NewUserService(cfg, repo, logger),
		Client:    NewClientService(repo, logger),
		Project:   NewProjectService(repo, logger),
		Timesheet: NewTimesheetService(repo, logger),
		Invoice:   NewInvoiceService(repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
