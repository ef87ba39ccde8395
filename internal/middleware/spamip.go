package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IPBlocklist reports whether an address has been blocked by moderation.
type IPBlocklist interface {
	IsBlocked(ip string) (bool, error)
}

// BlockSpamIPs rejects requests arriving from blocklisted addresses.
// Lookup failures fail open: a degraded cache must not take the site down.
func BlockSpamIPs(blocklist IPBlocklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		blocked, err := blocklist.IsBlocked(c.ClientIP())
		if err == nil && blocked {
			c.JSON(http.StatusForbidden, gin.H{"error": "Address is blocked"})
			c.Abort()
			return
		}
		c.Next()
	}
}
