package middlewares

import (
	"context"
	"strings"

	"gameforum/controller"
	"gameforum/models"
	"gameforum/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// SessionValidator resolves a bearer token into the signed-in user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.SessionUser, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// present reports whether the header was sent at all.
func bearerToken(c *gin.Context) (token string, present bool, err error) {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || parts[1] == "" {
		return "", true, errorx.ErrTokenMalformed
	}
	return parts[1], true, nil
}

// JWTAuthMiddleware rejects requests without a valid active session and
// stores the session user for handlers.
func JWTAuthMiddleware(v SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if !present {
			err = errorx.ErrNeedLogin
		}
		var su *models.SessionUser
		if err == nil {
			su, err = v.ValidateSession(c.Request.Context(), token)
		}
		if err != nil {
			controller.HandleError(c, err)
			c.Abort()
			return
		}
		c.Set(controller.CtxSessionKey, su)
		c.Set(controller.CtxTokenKey, token)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the session user when a valid token is
// sent and otherwise lets the request through as a guest.
func OptionalAuthMiddleware(v SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if present && err == nil {
			if su, err := v.ValidateSession(c.Request.Context(), token); err == nil {
				c.Set(controller.CtxSessionKey, su)
				c.Set(controller.CtxTokenKey, token)
			}
		}
		c.Next()
	}
}

// RequireRole lets through only session users holding one of roles. It
// must run after JWTAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		su := controller.CurrentUser(c)
		if su == nil {
			controller.ResponseError(c, errorx.ErrNeedLogin)
			c.Abort()
			return
		}
		for _, r := range roles {
			if su.Role == r {
				c.Next()
				return
			}
		}
		controller.ResponseError(c, errorx.ErrForbidden)
		c.Abort()
	}
}
