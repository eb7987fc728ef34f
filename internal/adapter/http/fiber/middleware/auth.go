package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/ports"
)

const viewerKey = "viewer"

// AuthRequired validates the bearer token and stores the resolved viewer in
// the request locals.
func AuthRequired(service ports.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization header format"})
		}

		viewer, err := service.ValidateToken(c.UserContext(), parts[1])
		if err != nil || viewer == nil || viewer.ID == "" {
			log.Debug("Rejected token", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals("user_id", viewer.ID)
		c.Locals("user_role", viewer.Role)
		c.Locals(viewerKey, viewer)

		return c.Next()
	}
}

// ViewerFrom returns the viewer stored by AuthRequired.
func ViewerFrom(c *fiber.Ctx) (*domain.Viewer, bool) {
	viewer, ok := c.Locals(viewerKey).(*domain.Viewer)
	return viewer, ok && viewer != nil
}
