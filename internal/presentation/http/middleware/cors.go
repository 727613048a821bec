package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/config"
)

// CORSMiddleware lets the till pages call the API from their own origin.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsOptions(cfg))
}

// corsOptions fills every list cfg leaves empty from config.DefaultCORSConfig.
// The idempotency key is always accepted and the replay and retry headers are
// always readable by the page.
func corsOptions(cfg *config.CORSConfig) cors.Config {
	def := config.DefaultCORSConfig()
	if cfg == nil {
		cfg = &def
	}

	opts := cors.Config{
		AllowOrigins:     orDefault(cfg.AllowedOrigins, def.AllowedOrigins),
		AllowMethods:     orDefault(cfg.AllowedMethods, def.AllowedMethods),
		AllowHeaders:     orDefault(cfg.AllowedHeaders, def.AllowedHeaders),
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID", "Retry-After", "X-Idempotency-Replayed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if !slices.Contains(opts.AllowHeaders, IdempotencyKeyHeader) {
		opts.AllowHeaders = append(opts.AllowHeaders, IdempotencyKeyHeader)
	}
	return opts
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return slices.Clone(def)
	}
	return slices.Clone(v)
}
