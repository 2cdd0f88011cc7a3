package middleware

import (
	"context"
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	apierrors "github.com/yukikurage/gestor-tarefas/internal/errors"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
	"github.com/yukikurage/gestor-tarefas/internal/services"
)

// PrincipalLoader resolves the principal of a session user.
type PrincipalLoader interface {
	GetPrincipal(ctx context.Context, userID uint64) (policy.Principal, error)
}

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// LoadPrincipal resolves the session user into a policy.Principal for the rest of the request.
// It must run after RequireAuth. Sessions of users that no longer exist are cleared.
func LoadPrincipal(loader PrincipalLoader, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		principal, err := loader.GetPrincipal(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				session := sessions.Default(c)
				session.Clear()
				_ = session.Save()
				apierrors.Unauthorized(c, "")
				return
			}

			log.Error().Err(err).Uint64("user_id", userID).Msg("failed to load principal")
			apierrors.InternalError(c)
			return
		}

		c.Set(constants.ContextKeyPrincipal, principal)
		c.Next()
	}
}

// GetPrincipal returns the principal stored by LoadPrincipal
func GetPrincipal(c *gin.Context) (policy.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return policy.Principal{}, false
	}
	principal, ok := value.(policy.Principal)
	return principal, ok
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
