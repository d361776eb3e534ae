package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/permissions"
	"reviewhub/internal/microservices/http-api/token"
)

const requesterKey = "requester"

type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// UserLoader resolves the token subject to a live user, so that role changes
// and deletions take effect before the token expires.
type UserLoader interface {
	Authenticate(ctx context.Context, userID string) (*models.User, error)
}

// AuthMiddleware identifies the caller from an optional bearer token.
// Requests without an Authorization header continue as anonymous; a header
// that is malformed or carries a bad token is rejected with 401.
func AuthMiddleware(parser TokenParser, users UserLoader, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(requesterKey, permissions.Requester{})
			c.Next()
			return
		}

		// format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
			return
		}

		claims, err := parser.Parse(parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}

		user, err := users.Authenticate(c.Request.Context(), claims.UserID)
		if err != nil {
			status, code := apperr.Status(err)
			if status == http.StatusInternalServerError {
				l.Error("load token subject", zap.String("user_id", claims.UserID), zap.Error(err))
			}
			abort(c, status, code, apperr.Message(err))
			return
		}

		c.Set(requesterKey, user.Requester())
		c.Next()
	}
}

// RequesterFrom returns the caller identity set by AuthMiddleware, or an
// anonymous requester.
func RequesterFrom(c *gin.Context) permissions.Requester {
	if v, ok := c.Get(requesterKey); ok {
		if r, ok := v.(permissions.Requester); ok {
			return r
		}
	}
	return permissions.Requester{}
}

// Rule is a request-level permission check.
type Rule func(method string, r permissions.Requester) bool

// Allow enforces rule: 401 for anonymous callers, 403 for everyone else.
func Allow(rule Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := RequesterFrom(c)
		err := permissions.Enforce(rule(c.Request.Method, r), r, "perform this action")
		if err != nil {
			status, code := apperr.Status(err)
			abort(c, status, code, apperr.Message(err))
			return
		}
		c.Next()
	}
}

func AdminOrReadOnly() gin.HandlerFunc {
	return Allow(permissions.AdminOrReadOnly)
}

func AdminOnly() gin.HandlerFunc {
	return Allow(func(_ string, r permissions.Requester) bool { return permissions.AdminOnly(r) })
}

func Authenticated() gin.HandlerFunc {
	return Allow(func(_ string, r permissions.Requester) bool { return permissions.Authenticated(r) })
}

func AuthenticatedOrReadOnly() gin.HandlerFunc {
	return Allow(permissions.AuthenticatedOrReadOnly)
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}
