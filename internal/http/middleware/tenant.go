package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/service"
)

const (
	// SessionCookieName carries the session id issued at login.
	SessionCookieName = "galaxyco_session"
	// SessionIDHeader is the cookie-less fallback used by API clients.
	SessionIDHeader = "X-Session-ID"
	// WorkspaceIDHeader selects the workspace a request operates on. Absent,
	// the user's first active membership is used.
	WorkspaceIDHeader = "X-Workspace-Id"

	tenantContextKey = "tenantContext"
	currentUserKey   = "currentUser"
)

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

// SessionID extracts the session id from the cookie or header.
func SessionID(c *gin.Context) (uuid.UUID, error) {
	raw, err := c.Cookie(SessionCookieName)
	if err != nil || raw == "" {
		raw = c.GetHeader(SessionIDHeader)
	}
	if raw == "" {
		return uuid.Nil, errors.New("no session")
	}
	return uuid.Parse(raw)
}

// RequireAuth validates the session and stores the user in the gin context.
// Failures answer 401 with a fixed body and never leak the reason.
func RequireAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := SessionID(c)
		if err != nil {
			unauthorized(c)
			return
		}

		user, err := auth.ValidateSession(c.Request.Context(), sessionID)
		if err != nil {
			if !errors.Is(err, service.ErrSessionExpired) && !errors.Is(err, service.ErrUserNotFound) {
				slog.ErrorContext(c.Request.Context(), "session validation failed", "error", err)
			}
			unauthorized(c)
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

// RequireTenant resolves the caller's workspace membership and stores the
// TenantContext. It must run after RequireAuth.
func RequireTenant(tenants service.TenantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		user, ok := CurrentUser(c)
		if !ok {
			unauthorized(c)
			return
		}

		workspaceID := uuid.Nil
		if raw := c.GetHeader(WorkspaceIDHeader); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid workspace id"})
				return
			}
			workspaceID = id
		} else {
			id, err := tenants.DefaultWorkspace(ctx, user.ID)
			if err != nil {
				if errors.Is(err, service.ErrForbidden) {
					c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no workspace membership"})
					return
				}
				slog.ErrorContext(ctx, "default workspace lookup failed", "error", err, "user_id", user.ID)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			workspaceID = id
		}

		tc, err := tenants.ResolveForUser(ctx, user.ID, workspaceID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrForbidden):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			case errors.Is(err, service.ErrUserNotFound):
				unauthorized(c)
			default:
				slog.ErrorContext(ctx, "tenant resolution failed", "error", err, "user_id", user.ID)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}

		SetTenant(c, tc)
		c.Next()
	}
}

// SetCurrentUser stores the authenticated user in the gin context.
func SetCurrentUser(c *gin.Context, user *model.User) {
	c.Set(currentUserKey, user)
}

// SetTenant stores the resolved TenantContext in the gin context.
func SetTenant(c *gin.Context, tc *service.TenantContext) {
	c.Set(tenantContextKey, tc)
}

// CurrentUser returns the authenticated user set by RequireAuth.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// TenantFrom returns the TenantContext set by RequireTenant.
func TenantFrom(c *gin.Context) (*service.TenantContext, bool) {
	v, ok := c.Get(tenantContextKey)
	if !ok {
		return nil, false
	}
	tc, ok := v.(*service.TenantContext)
	return tc, ok
}
