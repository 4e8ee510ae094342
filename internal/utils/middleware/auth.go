package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/uniedit/paysync/internal/utils/errors"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	// UserIDKey holds the int64 id of the caller that owns transactions,
	// customers and subscriptions.
	UserIDKey = "user_id"
	EmailKey  = "email"
)

// Claims is the identity carried by a validated access token.
type Claims struct {
	UserID int64
	Email  string
}

// JWTValidator validates host-issued access tokens.
type JWTValidator interface {
	ValidateToken(token string) (*Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity on the gin context.
func RequireAuth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(AuthorizationHeader))
		if !ok {
			abortUnauthorized(c, "UNAUTHORIZED", "Authorization header required")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil || claims.UserID <= 0 {
			abortUnauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: apperrors.ErrorDetail{Code: code, Message: message},
	})
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// GetUserID returns the caller's user id, or 0 when unauthenticated.
func GetUserID(c *gin.Context) int64 {
	if val, exists := c.Get(UserIDKey); exists {
		if userID, ok := val.(int64); ok {
			return userID
		}
	}
	return 0
}

func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}
