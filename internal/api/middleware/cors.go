package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ConfigCORS allows the configured domains plus localhost for development.
func ConfigCORS(allowedDomains string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	domains := strings.Split(allowedDomains, ",")
	config.AllowOriginFunc = func(origin string) bool {
		if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
			return true
		}

		for _, domain := range domains {
			domain = strings.TrimSpace(domain)
			if domain != "" && strings.HasSuffix(origin, domain) {
				return true
			}
		}

		return false
	}

	return cors.New(config)
}
