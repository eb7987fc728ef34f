package health

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// retryAfterSeconds is advertised to load balancers while the service is
// not ready.
const retryAfterSeconds = 10

// FiberHandler exposes liveness and readiness endpoints.
type FiberHandler struct {
	service *Service
}

func NewFiberHandler(service *Service) *FiberHandler {
	return &FiberHandler{service: service}
}

// RegisterRoutes mounts both the plain and the Kubernetes-style paths.
func (h *FiberHandler) RegisterRoutes(router fiber.Router) {
	for _, path := range []string{"/health", "/healthz"} {
		router.Get(path, h.Health)
	}
	for _, path := range []string{"/ready", "/readyz"} {
		router.Get(path, h.Ready)
	}
}

func (h *FiberHandler) Health(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(h.service.Health(c.UserContext()))
}

// Ready answers 503 only when a required dependency is down. A degraded
// service stays in rotation.
func (h *FiberHandler) Ready(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")

	response := h.service.Ready(c.UserContext())
	if !response.Ready {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}
	return c.JSON(response)
}
