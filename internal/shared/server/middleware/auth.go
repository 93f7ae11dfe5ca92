package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"

	authRejectedKey = "authRejected"
)

// TokenVerifier resolves a bearer token to an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Auth resolves the bearer token when one is sent. Requests without a usable token
// continue anonymously so public routes keep working with a stale token; RequireUser
// guards the routes that need an identity.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" || verifier == nil {
			c.Set(authRejectedKey, true)
			c.Next()
			return
		}

		id, err := verifier.Verify(token)
		if err != nil {
			c.Set(authRejectedKey, true)
			c.Next()
			return
		}

		c.Set(userIDKey, id.UserID)
		if id.Email != "" {
			c.Set(userEmailKey, id.Email)
		}
		if id.Name != "" {
			c.Set(userNameKey, id.Name)
		}
		if id.Picture != "" {
			c.Set(userPictureKey, id.Picture)
		}
		c.Next()
	}
}

// RequireUser rejects requests that Auth could not attach an identity to.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserIDFromContext(c) != "" {
			c.Next()
			return
		}
		message := "missing bearer token"
		if c.GetBool(authRejectedKey) {
			message = "invalid or expired token"
		}
		respond.Error(c, http.StatusUnauthorized, "unauthorized", message, nil)
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
