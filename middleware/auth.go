package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/auth"
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "user_id"
	authTimeKey = "auth_time"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

func abortJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// extractToken returns the bearer token or "" when the header is malformed.
func extractToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Auth verifies the Firebase ID token of the signed in admin and stores the
// user id and sign-in time in the context. Browsers cannot set headers on a
// websocket upgrade, so a token query parameter is accepted as well.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			log.WithField("ip", c.ClientIP()).Warn("request without bearer token")
			abortJSON(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		verified, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).WithField("ip", c.ClientIP()).Warn("id token rejected")
			abortJSON(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(userIDKey, verified.UID)
		c.Set(authTimeKey, time.Unix(verified.AuthTime, 0))
		c.Next()
	}
}

// RecentAuth rejects requests whose sign-in is older than window. The
// dashboard answers 403 by asking the admin to sign in again.
func RecentAuth(window time.Duration, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		at, ok := c.Get(authTimeKey)
		signedIn, _ := at.(time.Time)
		if !ok || now().Sub(signedIn) > window {
			abortJSON(c, http.StatusForbidden, "Please sign in again to change settings.")
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) string {
	if userID, exists := c.Get(userIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}
