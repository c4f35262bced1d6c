package middleware

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/temcen/quickrec/internal/config"
)

func CORS(cfg *config.Config) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  cfg.Security.CORS.AllowedMethods,
		AllowHeaders:  cfg.Security.CORS.AllowedHeaders,
		ExposeHeaders: []string{RequestIDHeader, "X-Recommendation-Path", "X-Cache"},
	}

	// A wildcard origin cannot be combined with credentials.
	if len(cfg.Security.CORS.AllowedOrigins) == 0 || slices.Contains(cfg.Security.CORS.AllowedOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = cfg.Security.CORS.AllowedOrigins
		config.AllowCredentials = true
	}

	return cors.New(config)
}
