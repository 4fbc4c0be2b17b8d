package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dobtasks/internal/models"
)

// RequireStaff gates the management surface: ADMIN, MANAGER or superuser.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no actor in context"})
			return
		}
		if !actor.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireRoles allows only the listed roles through (superusers always pass).
func RequireRoles(allowed ...models.Role) gin.HandlerFunc {
	allowedSet := map[models.Role]struct{}{}
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no actor in context"})
			return
		}
		if actor.IsSuperuser {
			c.Next()
			return
		}
		if _, ok := allowedSet[actor.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
