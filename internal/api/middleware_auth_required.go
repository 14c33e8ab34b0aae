package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"go.uber.org/zap"
)

// SessionRequired authenticates API routes, which the gate lets through
// without resolving a session.
func (handler *Handler) SessionRequired(c *fiber.Ctx) error {
	session, ops, err := handler.sessions.Resolve(c.UserContext(), requestCookieJar(c))
	if err != nil {
		handler.logger.Warn("session resolution failed on api route",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return apiError(c, fiber.StatusServiceUnavailable, "session unavailable")
	}

	applyCookieOps(c, ops)
	if !session.IsAuthenticated() {
		if acceptsJSON(c) || isHTMX(c) {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Redirect(gate.LoginPath, fiber.StatusSeeOther)
	}

	c.Locals(contextUserIDKey, session.UserID)
	return c.Next()
}
