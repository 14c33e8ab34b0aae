package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/gate"
)

// Gate runs the request gate ahead of every route. Cookie ops are written
// before the decision is applied, so a rotated session survives a redirect.
func (handler *Handler) Gate(c *fiber.Ctx) error {
	path := c.Path()
	if gate.Excluded(path) {
		return c.Next()
	}

	result := handler.gate.Evaluate(c.UserContext(), gate.Request{
		Path:    path,
		Host:    c.Hostname(),
		Referer: c.Get(fiber.HeaderReferer),
		Cookies: requestCookieJar(c),
	})

	applyCookieOps(c, result.CookieOps)
	if result.Session.IsAuthenticated() {
		c.Locals(contextUserIDKey, result.Session.UserID)
	}
	if result.Decision.IsRedirect() {
		return c.Redirect(result.Decision.Location, fiber.StatusSeeOther)
	}
	return c.Next()
}
