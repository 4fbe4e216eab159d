package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/pkg/jwt"
	"github.com/smaraba1/payroll-processing/pkg/response"
)

// Context keys, shared with handler.MustGetUserID and friends.
const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxEmail    = "email"
	ctxTokenJTI = "token_jti"
	ctxTokenExp = "token_exp"
)

// Blacklist reports revoked token ids.
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth validates the Authorization: Bearer <token> header and injects the
// caller into the context. bl may be nil, in which case logout cannot revoke
// tokens early.
func JWTAuth(jwtMgr *jwt.Manager, bl Blacklist, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "Missing Authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "Malformed Authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token is invalid or expired")
			c.Abort()
			return
		}
		if claims.TokenType != "access" || !access.Role(claims.Role).Valid() {
			response.Unauthorized(c, 10002, "Token is invalid or expired")
			c.Abort()
			return
		}

		if bl != nil {
			revoked, err := bl.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// Redis down: accept the token rather than lock everyone out.
				logger.Warn("blacklist lookup failed", zap.Error(err))
			} else if revoked {
				response.Unauthorized(c, 10002, "Token has been revoked")
				c.Abort()
				return
			}
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ctxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RequireCapability rejects callers whose role does not grant cap.
func RequireCapability(cap access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := access.Role(c.GetString(ctxRole))
		if !role.Valid() {
			response.Unauthorized(c, 10002, "Not authenticated")
			c.Abort()
			return
		}
		if !role.Can(cap) {
			response.Forbidden(c, 10003, "You do not have permission to do this")
			c.Abort()
			return
		}
		c.Next()
	}
}
