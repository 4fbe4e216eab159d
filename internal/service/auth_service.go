package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smaraba1/payroll-processing/config"
	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/model"
	"github.com/smaraba1/payroll-processing/internal/repository"
	"github.com/smaraba1/payroll-processing/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUserInactive       = errors.New("Account is deactivated")
	ErrUserNotFound       = errors.New("User not found")
)

// AuthService authentication use cases
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	EnsureAdmin(ctx context.Context) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user for login failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Email, string(user.Role))
	if err != nil {
		s.logger.Error("sign access token failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.UserID), zap.String("role", string(user.Role)))

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		ExpiresAt:   expiresAt,
		User:        *toUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

// Logout revokes the token for the rest of its lifetime. Without Redis the
// token simply expires on schedule.
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("blacklist token failed", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load current user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── EnsureAdmin ──────────────────────

// EnsureAdmin creates the seed administrator, or resets its password and role
// when the account already exists.
func (s *authService) EnsureAdmin(ctx context.Context) error {
	email := s.cfg.Auth.SeedAdminEmail
	if email == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Auth.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := s.repo.User.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user.PasswordHash = string(hash)
		user.Role = access.RoleAdmin
		user.IsActive = true
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.logger.Error("reset seed admin failed", zap.Error(err))
			return err
		}
		s.logger.Info("seed admin password reset", zap.String("email", email))
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin := &model.User{
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    "Admin",
			LastName:     "User",
			Role:         access.RoleAdmin,
			IsActive:     true,
		}
		if err := s.repo.User.Create(ctx, admin); err != nil {
			s.logger.Error("create seed admin failed", zap.Error(err))
			return err
		}
		s.logger.Info("seed admin created", zap.String("email", email))
		return nil
	default:
		return err
	}
}
