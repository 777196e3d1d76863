package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// GetRealIP extracts the client IP, preferring proxy-set headers over the
// socket address: X-Real-IP first, then the first entry of
// X-Forwarded-For, then gin's ClientIP fallback.
func GetRealIP(c *gin.Context) string {
	if realIP := c.Request.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	if forwarded := c.Request.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	return c.ClientIP()
}

// GetUserAgent returns the request's User-Agent header
func GetUserAgent(c *gin.Context) string {
	if agent := c.Request.UserAgent(); agent != "" {
		return agent
	}
	return "Unknown"
}
