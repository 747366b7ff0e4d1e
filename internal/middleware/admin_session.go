package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.depttimeline/internal/admin"
)

const (
	AdminSessionHeader = "X-Admin-Session"
	AdminSessionKey    = "admin_session"
)

// RequireAdmin only lets requests through that carry the id of an unlocked
// admin session
func RequireAdmin(sessions *admin.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(AdminSessionHeader)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": AdminSessionHeader + " header is required"})
			return
		}
		if !sessions.Unlocked(id) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin session is locked or has expired"})
			return
		}
		c.Set(AdminSessionKey, id)
		c.Next()
	}
}
