package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type SystemRole string

const (
	SystemRoleAdmin SystemRole = "admin"
	SystemRoleSRE   SystemRole = "sre"
)

// SystemRoleAuthorizer grants operator roles from configured emails and user ids.
type SystemRoleAuthorizer struct {
	emails  map[SystemRole]map[string]struct{}
	userIDs map[SystemRole]map[int64]struct{}
}

func NewSystemRoleAuthorizer(adminEmails, sreEmails, adminUserIDs, sreUserIDs []string) *SystemRoleAuthorizer {
	return &SystemRoleAuthorizer{
		emails: map[SystemRole]map[string]struct{}{
			SystemRoleAdmin: normalizeEmailSet(adminEmails),
			SystemRoleSRE:   normalizeEmailSet(sreEmails),
		},
		userIDs: map[SystemRole]map[int64]struct{}{
			SystemRoleAdmin: parseUserIDSet(adminUserIDs),
			SystemRoleSRE:   parseUserIDSet(sreUserIDs),
		},
	}
}

// HasAny reports whether the identity holds at least one of roles.
func (a *SystemRoleAuthorizer) HasAny(userID int64, email string, roles ...SystemRole) bool {
	if userID == 0 && email == "" {
		return false
	}
	email = normalizeEmail(email)

	for _, role := range roles {
		if email != "" {
			if _, ok := a.emails[role][email]; ok {
				return true
			}
		}
		if userID != 0 {
			if _, ok := a.userIDs[role][userID]; ok {
				return true
			}
		}
	}
	return false
}

func RequireAnySystemRole(authorizer *SystemRoleAuthorizer, roles ...SystemRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "User not authenticated",
				},
			})
			return
		}

		if authorizer == nil || !authorizer.HasAny(userID, GetEmail(c), roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient permissions",
				},
			})
			return
		}

		c.Next()
	}
}

func RequireAdminOrSRE(authorizer *SystemRoleAuthorizer) gin.HandlerFunc {
	return RequireAnySystemRole(authorizer, SystemRoleAdmin, SystemRoleSRE)
}

func normalizeEmailSet(emails []string) map[string]struct{} {
	out := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = normalizeEmail(e)
		if e == "" {
			continue
		}
		out[e] = struct{}{}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseUserIDSet(ids []string) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, s := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}
