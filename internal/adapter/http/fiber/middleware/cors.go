package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/seu-repo/sigec-reports/pkg/config"
)

// Report endpoints are read-only and the export needs its file name visible
// to browser clients.
var (
	defaultAllowMethods  = []string{fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions}
	defaultAllowHeaders  = []string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization, "X-Request-ID"}
	defaultExposeHeaders = []string{fiber.HeaderContentLength, fiber.HeaderContentDisposition}
)

const defaultCORSMaxAge = 86400

// NewCORS creates a CORS middleware from application config. Credentials
// are never allowed together with the wildcard origin.
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	origins := joinOr(cfg.AllowedOrigins, []string{"*"})

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultCORSMaxAge
	}

	return fibercors.New(fibercors.Config{
		AllowOrigins:     origins,
		AllowMethods:     joinOr(cfg.AllowedMethods, defaultAllowMethods),
		AllowHeaders:     joinOr(cfg.AllowedHeaders, defaultAllowHeaders),
		ExposeHeaders:    joinOr(cfg.ExposeHeaders, defaultExposeHeaders),
		AllowCredentials: cfg.Credentials && origins != "*",
		MaxAge:           maxAge,
	})
}

func joinOr(values, fallback []string) string {
	if len(values) == 0 {
		values = fallback
	}
	return strings.Join(values, ",")
}
